package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/xerrors"
)

const lastCrawledFile = "last_crawled.json"

// LastCrawled maps an advisory identifier to the time its sources were last
// dispatched.
type LastCrawled map[string]time.Time

func GetLastCrawledDate(dir, vulnID string) (time.Time, error) {
	lastCrawled, err := getLastCrawled(dir)
	if err != nil {
		return time.Time{}, err
	}

	t, ok := lastCrawled[vulnID]
	if !ok {
		return time.Unix(0, 0), nil
	}

	return t, nil
}

func getLastCrawled(dir string) (LastCrawled, error) {
	lastCrawled := LastCrawled{}
	filePath := filepath.Join(dir, lastCrawledFile)
	if ok, err := Exists(filePath); err != nil {
		return nil, err
	} else if !ok {
		return lastCrawled, nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err = json.NewDecoder(f).Decode(&lastCrawled); err != nil {
		return nil, err
	}

	return lastCrawled, nil
}

func SetLastCrawledDate(dir, vulnID string, crawledAt time.Time) error {
	lastCrawled, err := getLastCrawled(dir)
	if err != nil {
		return xerrors.Errorf("failed to get last crawled date: %w", err)
	}
	lastCrawled[vulnID] = crawledAt

	b, err := json.MarshalIndent(lastCrawled, "", "  ")
	if err != nil {
		return err
	}
	if err = os.MkdirAll(dir, 0755); err != nil {
		return xerrors.Errorf("failed to create %s: %w", dir, err)
	}
	if err = os.WriteFile(filepath.Join(dir, lastCrawledFile), b, 0600); err != nil {
		return xerrors.Errorf("failed to write last crawled date: %w", err)
	}

	return nil
}
