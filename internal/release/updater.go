// Package release replaces the running binary with the latest GitHub release.
package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
)

// ErrUpToDate is returned by Apply when the release is the running version.
var ErrUpToDate = errors.New("already up to date")

type GithubRelease struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

type Updater struct {
	ApiUrl         string
	CurrentTagName string
	ExecPath       string // Empty means os.Executable.
	GOOS, GOARCH   string
	Client         *http.Client
}

func NewUpdater(apiURL, currentTagName string) *Updater {
	return &Updater{
		ApiUrl:         apiURL,
		CurrentTagName: currentTagName,
		GOOS:           runtime.GOOS,
		GOARCH:         runtime.GOARCH,
		Client:         http.DefaultClient,
	}
}

// AssetName is the release asset built for the updater's platform.
func (u *Updater) AssetName() string {
	name := fmt.Sprintf("simlive-%s-%s", u.GOOS, u.GOARCH)
	if u.GOOS == "windows" {
		name += ".exe"
	}
	return name
}

func (u *Updater) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := u.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", url, res.Status)
	}
	return res, nil
}

func (u *Updater) GetLatestRelease(ctx context.Context) (*GithubRelease, error) {
	res, err := u.get(ctx, u.ApiUrl+"/latest")
	if err != nil {
		return nil, fmt.Errorf("error fetching latest release: %w", err)
	}
	defer res.Body.Close()

	var release GithubRelease
	if err := json.NewDecoder(res.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("error decoding latest release: %w", err)
	}
	return &release, nil
}

func (u *Updater) Apply(ctx context.Context, release *GithubRelease) error {
	if release.TagName == u.CurrentTagName {
		return ErrUpToDate
	}

	assetName := u.AssetName()
	var downloadURL string
	for _, asset := range release.Assets {
		if asset.Name == assetName {
			downloadURL = asset.BrowserDownloadURL
			break
		}
	}
	if downloadURL == "" {
		return fmt.Errorf("release %s has no asset %s", release.TagName, assetName)
	}

	execPath := u.ExecPath
	if execPath == "" {
		p, err := os.Executable()
		if err != nil {
			return fmt.Errorf("error locating executable: %w", err)
		}
		execPath = p
	}
	tmpPath := execPath + ".new"

	res, err := u.get(ctx, downloadURL)
	if err != nil {
		return fmt.Errorf("error downloading new release: %w", err)
	}
	defer res.Body.Close()

	out, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0755)
	if err != nil {
		return fmt.Errorf("error creating temp file for new release: %w", err)
	}
	if _, err := io.Copy(out, res.Body); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("error copying new release to temp file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("error writing new release: %w", err)
	}

	// A running executable cannot be overwritten on Windows, only renamed.
	if u.GOOS == "windows" {
		if err := os.Rename(execPath, execPath+".old"); err != nil {
			return fmt.Errorf("error moving old executable: %w", err)
		}
	}
	if err := os.Rename(tmpPath, execPath); err != nil {
		return fmt.Errorf("error installing new release: %w", err)
	}
	if err := os.Chmod(execPath, 0755); err != nil {
		return fmt.Errorf("error marking new release executable: %w", err)
	}

	u.CurrentTagName = release.TagName
	return nil
}
