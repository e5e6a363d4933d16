package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	baseURL = "http://localhost:8080"
)

const sampleDocument = `Home Equity Lending Guide

Table of Contents
1 Overview ............................. 2
2 Underwriting Criteria ................ 3

1 Overview
This guide covers underwriting for home equity lines of credit.

2 Underwriting Criteria
If the combined loan-to-value ratio exceeds 80 percent, then the application
is declined. When the ratio is 80 percent or lower and income is verified,
the line is approved. Otherwise the file must be referred to an underwriter.
`

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	// 1. Health
	fmt.Println("1. Checking Health...")
	if !sendRequest("GET", "/health", nil) {
		fmt.Println("FAILED: Health check")
		os.Exit(1)
	}
	fmt.Println("PASSED: Health check")

	// 2. Process a document
	fmt.Println("2. Processing Document...")
	payload := map[string]interface{}{
		"name": "Home Equity Guide",
		"text": sampleDocument,
	}

	if !sendRequest("POST", "/documents/process", payload) {
		fmt.Println("FAILED: Process document")
		os.Exit(1)
	}
	fmt.Println("PASSED: Process document")

	// 3. Validate a hand-built forest with auto-fix enabled
	fmt.Println("3. Validating Trees...")
	validatePayload := map[string]interface{}{
		"auto_fix": true,
		"trees": []map[string]interface{}{
			{
				"tree_id":    "dt_0000",
				"section_id": "nav_0001",
				"title":      "Underwriting Criteria",
				"root_id":    "n000",
				"source":     "pattern",
				"nodes": map[string]interface{}{
					"n000": map[string]interface{}{
						"node_id":            "n000",
						"decision_type":      "ROOT",
						"condition":          "Evaluate underwriting criteria",
						"child_decision_ids": []string{"n001"},
					},
					"n001": map[string]interface{}{
						"node_id":            "n001",
						"decision_type":      "BRANCH",
						"condition":          "CLTV exceeds 80 percent",
						"parent_decision_id": "n000",
					},
				},
			},
		},
	}

	if !sendRequest("POST", "/trees/validate", validatePayload) {
		fmt.Println("FAILED: Validate trees")
		os.Exit(1)
	}
	fmt.Println("PASSED: Validate trees")
}

func sendRequest(method, endpoint string, payload interface{}) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Response: %s\n", string(respBody))

	return true
}
