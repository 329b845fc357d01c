package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"simlive/internal/config"
	"simlive/internal/logging"
)

// getClient returns an HTTP client authorized for the configured scopes,
// asking for a new token on the terminal when none is cached.
func getClient(ctx context.Context, api config.API, log *logging.Logger) (*http.Client, error) {
	b, err := os.ReadFile(api.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file (%s): %w", api.CredentialsFile, err)
	}
	cfg, err := google.ConfigFromJSON(b, api.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials file: %w", err)
	}

	tok, err := tokenFromFile(api.TokenFile)
	if err != nil {
		tok, err = getTokenFromWeb(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := saveToken(api.TokenFile, tok); err != nil {
			log.Warn("Unable to cache oauth token: %v", err)
		} else {
			log.Info("Saved credential file to: %s", api.TokenFile)
		}
	}
	return cfg.Client(ctx, tok), nil
}

func getTokenFromWeb(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	fmt.Println()
	fmt.Println("================================================================================")
	fmt.Println("AUTHORIZATION REQUIRED")
	fmt.Println("================================================================================")
	fmt.Println("Step 1: Visit this URL in your browser:")
	fmt.Printf("\n%s\n\n", authURL)
	fmt.Println("Step 2: After authorizing, Google will display an authorization code.")
	fmt.Println("Step 3: Copy the code and paste it below.")
	fmt.Println()
	fmt.Print("Enter authorization code: ")

	authCode, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && authCode == "" {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}

	tok, err := cfg.Exchange(ctx, strings.TrimSpace(authCode))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token: %w", err)
	}
	return tok, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
