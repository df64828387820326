package main

import (
	"os"
	"path/filepath"
)

func historyPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, historyFile), nil
}

func openHistory() (*os.File, error) {
	path, err := historyPath()
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func saveHistory() (*os.File, error) {
	path, err := historyPath()
	if err != nil {
		return nil, err
	}
	return os.Create(path)
}
