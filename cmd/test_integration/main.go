package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/goccy/go-json"
)

func baseURL() string {
	if u := os.Getenv("FLAVORGRAPH_URL"); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	suffix := fmt.Sprintf("%d", time.Now().Unix())
	basil := "Basil " + suffix
	tomato := "Tomato " + suffix
	mozzarella := "Mozzarella " + suffix

	// 1. Add pairings
	fmt.Println("1. Adding Pairings...")
	pairings := []map[string]string{
		{"ingredient1": basil, "category1": "Herb", "ingredient2": tomato, "category2": "Fruit", "affinity": "EXCELLENT"},
		{"ingredient1": tomato, "category1": "Fruit", "ingredient2": mozzarella, "category2": "Dairy", "affinity": "STRONG"},
		{"ingredient1": basil, "category1": "Herb", "ingredient2": mozzarella, "category2": "Dairy", "affinity": "GOOD"},
	}
	for _, p := range pairings {
		if _, ok := sendRequest("POST", "/pairings", p); !ok {
			fmt.Println("FAILED: Add pairing")
			os.Exit(1)
		}
	}
	fmt.Println("PASSED: Add pairings")

	// 2. Trios
	fmt.Println("2. Fetching Trios...")
	body, ok := sendRequest("GET", "/ingredients/"+url.PathEscape(basil)+"/trios", nil)
	if !ok {
		fmt.Println("FAILED: Trios")
		os.Exit(1)
	}
	var trios struct {
		Trios []string `json:"trios"`
	}
	if err := json.Unmarshal(body, &trios); err != nil || len(trios.Trios) == 0 {
		fmt.Printf("FAILED: Trios response %s\n", body)
		os.Exit(1)
	}
	fmt.Println("PASSED: Trios")

	// 3. Flavor tree
	fmt.Println("3. Fetching Flavor Tree...")
	if _, ok := sendRequest("GET", "/ingredients/"+url.PathEscape(basil)+"/flavortree", nil); !ok {
		fmt.Println("FAILED: Flavor tree")
		os.Exit(1)
	}
	fmt.Println("PASSED: Flavor tree")

	// 4. Latest pairings
	fmt.Println("4. Fetching Latest Pairings...")
	body, ok = sendRequest("GET", "/pairings/latest", nil)
	if !ok {
		fmt.Println("FAILED: Latest pairings")
		os.Exit(1)
	}
	var latest struct {
		Pairings []map[string]interface{} `json:"pairings"`
	}
	if err := json.Unmarshal(body, &latest); err != nil || len(latest.Pairings) == 0 || len(latest.Pairings) > 5 {
		fmt.Printf("FAILED: Latest pairings response %s\n", body)
		os.Exit(1)
	}
	fmt.Println("PASSED: Latest pairings")
}

func sendRequest(method, endpoint string, payload interface{}) ([]byte, bool) {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL()+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Response Status: %s\n", resp.Status)
	fmt.Printf("Response Body: %s\n", string(respBody))

	return respBody, resp.StatusCode >= 200 && resp.StatusCode < 300
}
