package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	vegeta "github.com/tsenart/vegeta/v12/lib"
)

const (
	baseURL      = "http://localhost:8080"
	targetRPS    = 5
	testDuration = 2 * time.Minute
)

var rng *rand.Rand

type AssignRequest struct {
	ApplicationID string `json:"application_id"`
	StudentID     string `json:"student_id"`
	OfficerID     string `json:"officer_id"`
	TaskType      string `json:"task_type"`
}

type DecisionRequest struct {
	BoardMemberID string `json:"board_member_id"`
	Decision      string `json:"decision"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run load.go <scenario>")
		fmt.Println("Scenarios: health, applications, reviews, all")
		os.Exit(1)
	}

	scenario := os.Args[1]
	rng = rand.New(rand.NewSource(time.Now().UnixNano()))

	var metrics vegeta.Metrics
	var err error

	switch scenario {
	case "health":
		metrics, err = testHealth()
	case "applications":
		metrics, err = testApplications()
	case "reviews":
		metrics, err = testReviews()
	case "all":
		metrics, err = testAll()
	default:
		fmt.Printf("Unknown scenario: %s\n", scenario)
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	printMetrics(metrics)
}

func testHealth() (vegeta.Metrics, error) {
	targeter := vegeta.NewStaticTargeter(vegeta.Target{
		Method: "GET",
		URL:    baseURL + "/health",
	})

	return runAttack(targeter, "Health Check")
}

func testApplications() (vegeta.Metrics, error) {
	// Чтение случайных заявок: стабильная смесь 200/404
	targeter := vegeta.NewStaticTargeter(
		vegeta.Target{
			Method: "GET",
			URL:    baseURL + "/applications/" + uuid.NewString(),
		},
		vegeta.Target{
			Method: "POST",
			URL:    baseURL + "/applications/" + uuid.NewString() + "/submit",
		},
	)

	return runAttack(targeter, "Application Operations")
}

func testReviews() (vegeta.Metrics, error) {
	targeter := vegeta.NewStaticTargeter(
		vegeta.Target{
			Method: "GET",
			URL:    baseURL + "/field-reviews",
			Header: http.Header{
				"X-Actor-Role": []string{"ADMIN"},
			},
		},
		vegeta.Target{
			Method: "POST",
			URL:    baseURL + "/field-reviews",
			Body:   createAssignBody(),
			Header: http.Header{
				"Content-Type": []string{"application/json"},
			},
		},
	)

	return runAttack(targeter, "Review Operations")
}

func testAll() (vegeta.Metrics, error) {
	targeter := vegeta.NewStaticTargeter(
		vegeta.Target{
			Method: "GET",
			URL:    baseURL + "/health",
		},
		vegeta.Target{
			Method: "GET",
			URL:    baseURL + "/field-reviews",
			Header: http.Header{
				"X-Actor-Role": []string{"ADMIN"},
			},
		},
		vegeta.Target{
			Method: "GET",
			URL:    baseURL + "/applications/" + uuid.NewString(),
		},
		vegeta.Target{
			Method: "GET",
			URL:    baseURL + "/interviews/" + uuid.NewString(),
		},
	)

	return runAttack(targeter, "All Endpoints")
}

func runAttack(targeter vegeta.Targeter, name string) (vegeta.Metrics, error) {
	rate := vegeta.Rate{Freq: targetRPS, Per: time.Second}
	attacker := vegeta.NewAttacker()

	var metrics vegeta.Metrics
	for res := range attacker.Attack(targeter, rate, testDuration, name) {
		metrics.Add(res)
	}
	metrics.Close()

	return metrics, nil
}

func createAssignBody() []byte {
	req := AssignRequest{
		ApplicationID: uuid.NewString(),
		StudentID:     uuid.NewString(),
		OfficerID:     uuid.NewString(),
		TaskType:      fmt.Sprintf("load_task_%d", rng.Intn(10000)),
	}
	body, _ := json.Marshal(req)
	return body
}

func printMetrics(metrics vegeta.Metrics) {
	fmt.Printf("\n=== Load Test Results ===\n\n")
	fmt.Printf("Requests Total:     %d\n", metrics.Requests)
	fmt.Printf("Success Rate:       %.2f%%\n", metrics.Success*100)
	fmt.Printf("Duration:           %v\n", metrics.Duration)
	fmt.Printf("Latency P50:        %v\n", metrics.Latencies.P50)
	fmt.Printf("Latency P95:        %v\n", metrics.Latencies.P95)
	fmt.Printf("Latency P99:        %v\n", metrics.Latencies.P99)
	fmt.Printf("Latency Max:        %v\n", metrics.Latencies.Max)
	fmt.Printf("Throughput:         %.2f req/s\n", metrics.Throughput)

	if len(metrics.Errors) > 0 {
		fmt.Printf("\nErrors:\n")
		for _, err := range metrics.Errors {
			fmt.Printf("  - %s\n", err)
		}
	}
}
