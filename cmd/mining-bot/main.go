// mining-bot is a smoke client: it registers a player, picks the first
// unlocked scene, runs one accrual session and prints the settlement.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

func main() {
	baseURL := getenv("BASE_URL", "http://localhost:8080")
	apiKey := getenv("API_KEY", "")
	runFor := 30 * time.Second
	if v := getenv("RUN_SECONDS", ""); v != "" {
		var secs int
		if _, err := fmt.Sscanf(v, "%d", &secs); err == nil && secs > 0 {
			runFor = time.Duration(secs) * time.Second
		}
	}

	client := &http.Client{Timeout: 10 * time.Second}

	if apiKey == "" {
		var reg struct {
			PlayerID string `json:"player_id"`
			APIKey   string `json:"api_key"`
		}
		if err := call(client, http.MethodPost, baseURL+"/api/players/register", "",
			map[string]string{"name": "mining-bot"}, &reg); err != nil {
			log.Fatal(err)
		}
		apiKey = reg.APIKey
		log.Printf("registered player %s", reg.PlayerID)
	}

	var scenes struct {
		Items []struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			UnlockLevel int    `json:"unlock_level"`
		} `json:"items"`
	}
	if err := call(client, http.MethodGet, baseURL+"/api/public/scenes", apiKey, nil, &scenes); err != nil {
		log.Fatal(err)
	}
	var me struct {
		Level int `json:"level"`
	}
	if err := call(client, http.MethodGet, baseURL+"/api/me", apiKey, nil, &me); err != nil {
		log.Fatal(err)
	}

	sceneID := ""
	for _, sc := range scenes.Items {
		if sc.UnlockLevel <= me.Level {
			sceneID = sc.ID
		}
	}
	if sceneID == "" {
		log.Fatalf("no scene unlocked at level %d", me.Level)
	}

	var started json.RawMessage
	if err := call(client, http.MethodPost, baseURL+"/api/mining/start", apiKey,
		map[string]string{"scene_id": sceneID}, &started); err != nil {
		log.Fatal(err)
	}
	log.Printf("started: %s", started)

	deadline := time.Now().Add(runFor)
	for time.Now().Before(deadline) {
		time.Sleep(5 * time.Second)
		var est json.RawMessage
		if err := call(client, http.MethodGet, baseURL+"/api/mining/estimate", apiKey, nil, &est); err != nil {
			log.Printf("estimate: %v", err)
			continue
		}
		log.Printf("estimate: %s", est)
	}

	var summary json.RawMessage
	if err := call(client, http.MethodPost, baseURL+"/api/mining/stop", apiKey, nil, &summary); err != nil {
		log.Fatal(err)
	}
	log.Printf("settled: %s", summary)
}

func call(client *http.Client, method, url, apiKey string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%s %s: %d %s", method, url, resp.StatusCode, e.Error)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
