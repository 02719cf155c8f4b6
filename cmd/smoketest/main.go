// Command smoketest drives a running server through a profile's lifecycle.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

func main() {
	baseURL := os.Getenv("HEALTHRISK_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	c := &client{baseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{Timeout: 30 * time.Second}}

	fmt.Println("Starting smoke test against", c.baseURL)
	name := fmt.Sprintf("Smoke Test %d", time.Now().Unix())

	steps := []struct {
		name string
		run  func() error
	}{
		{"health", func() error {
			_, err := c.send(http.MethodGet, "/healthz", nil, http.StatusOK)
			return err
		}},
		{"save profile", func() error {
			_, err := c.send(http.MethodPost, "/api/profile", map[string]any{
				"core":      map[string]any{"name": name, "dob": "1988-02-14", "district": "Lucknow"},
				"lifestyle": map[string]any{"conditions": []string{"Asthma"}, "occupation": "Factory Worker"},
			}, http.StatusCreated)
			return err
		}},
		{"predict", func() error {
			body, err := c.send(http.MethodPost, "/api/predict", map[string]any{
				"name":      name,
				"symptoms":  []string{"cough"},
				"free_text": "feeling breathless since yesterday",
			}, http.StatusOK)
			if err != nil {
				return err
			}
			diseases := gjson.GetBytes(body, "risk_assessments.#.disease").Array()
			if len(diseases) != 2 {
				return fmt.Errorf("expected 2 assessments, got %d", len(diseases))
			}
			for _, a := range gjson.GetBytes(body, "risk_assessments").Array() {
				fmt.Printf("  %s: %s (%.0f)\n", a.Get("disease"), a.Get("level"), a.Get("score").Float())
			}
			fmt.Printf("  environment source: %s\n", gjson.GetBytes(body, "environmental_conditions.source"))
			return nil
		}},
		{"predict markdown", func() error {
			body, err := c.send(http.MethodPost, "/api/predict?format=markdown", map[string]any{"name": name}, http.StatusOK)
			if err != nil {
				return err
			}
			if !bytes.Contains(body, []byte("# Health risk report")) {
				return fmt.Errorf("unexpected markdown: %.80s", body)
			}
			return nil
		}},
		{"delete profile", func() error {
			_, err := c.send(http.MethodDelete, "/api/profile/"+strings.ReplaceAll(name, " ", "_"), nil, http.StatusOK)
			return err
		}},
		{"profile gone", func() error {
			_, err := c.send(http.MethodPost, "/api/predict", map[string]any{"name": name}, http.StatusNotFound)
			return err
		}},
	}

	for i, s := range steps {
		fmt.Printf("%d. %s...\n", i+1, s.name)
		if err := s.run(); err != nil {
			fmt.Printf("FAILED: %s: %v\n", s.name, err)
			os.Exit(1)
		}
		fmt.Printf("PASSED: %s\n", s.name)
	}
}

type client struct {
	baseURL string
	http    *http.Client
}

func (c *client) send(method, endpoint string, payload any, wantStatus int) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode != wantStatus {
		return nil, fmt.Errorf("status %d, want %d: %s", resp.StatusCode, wantStatus, respBody)
	}
	return respBody, nil
}
