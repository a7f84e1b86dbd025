package simd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kostasthomson/cloud-simulator/internal/sim"
	"github.com/kostasthomson/cloud-simulator/pkg/config"
	"github.com/kostasthomson/cloud-simulator/pkg/models"
)

func testServer() (*httptest.Server, *RunStore) {
	store := NewRunStore()
	srv := NewHTTPServer(store, NewRunExecutor(store))
	return httptest.NewServer(srv.Handler()), store
}

func testConfig() *config.Config {
	return &config.Config{
		Simulation: config.Simulation{MaxTime: 100, UpdateInterval: 1},
		Broker:     config.Broker{PollInterval: 5},
		Network:    config.Network{TotalBandwidth: 10000},
		ResourceTypes: []config.ResourceType{
			{
				Type:            1,
				NumResources:    2,
				TotalProcessors: 16,
				TotalMemory:     64,
				TotalStorage:    10,
				CompCapPerProc:  1000,
				Power:           config.Power{IdlePower: 100, PeakPowerCPU: 250},
			},
		},
		Tasks: []config.Task{
			{
				NumVMs:                   1,
				ProcessorsPerVM:          4,
				MemoryPerVM:              8,
				StoragePerVM:             1,
				NetworkBandwidth:         100,
				TotalInstructions:        4000,
				AvailableImplementations: []int{1},
				ArrivalTime:              0.5,
			},
		},
	}
}

func createRun(t *testing.T, url string, req createRunRequest) *models.Run {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url+"/v1/runs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var run models.Run
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		t.Fatal(err)
	}
	return &run
}

func getRun(t *testing.T, url, id string) *models.Run {
	t.Helper()
	resp, err := http.Get(url + "/v1/runs/" + id)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var run models.Run
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		t.Fatal(err)
	}
	return &run
}

func TestHealthz(t *testing.T) {
	srv, _ := testServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestCreateAndGetRun(t *testing.T) {
	srv, _ := testServer()
	defer srv.Close()

	run := createRun(t, srv.URL, createRunRequest{RunID: "r1", Config: testConfig()})
	if run.ID != "r1" || run.Status != models.RunStatusPending {
		t.Fatalf("unexpected run: %+v", run)
	}

	got := getRun(t, srv.URL, "r1")
	if got.ID != "r1" {
		t.Errorf("expected run r1, got %+v", got)
	}
}

func TestCreateRunRejectsInvalidConfig(t *testing.T) {
	srv, _ := testServer()
	defer srv.Close()

	bad := testConfig()
	bad.Simulation.MaxTime = -1
	body, _ := json.Marshal(createRunRequest{Config: bad})
	resp, err := http.Post(srv.URL+"/v1/runs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateDuplicateRunConflicts(t *testing.T) {
	srv, _ := testServer()
	defer srv.Close()

	createRun(t, srv.URL, createRunRequest{RunID: "dup", Config: testConfig()})
	body, _ := json.Marshal(createRunRequest{RunID: "dup", Config: testConfig()})
	resp, err := http.Post(srv.URL+"/v1/runs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestRunLifecycleThroughAPI(t *testing.T) {
	srv, _ := testServer()
	defer srv.Close()

	run := createRun(t, srv.URL, createRunRequest{RunID: "life", Config: testConfig(), Start: true})
	if run.Status != models.RunStatusRunning {
		t.Fatalf("expected running status, got %q", run.Status)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if got := getRun(t, srv.URL, "life"); got.Status == models.RunStatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("run did not complete in time")
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Get(srv.URL + "/v1/runs/life/results")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for results, got %d", resp.StatusCode)
	}
	var result sim.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Summary.TasksCompleted != 1 {
		t.Errorf("expected 1 completed task, got %d", result.Summary.TasksCompleted)
	}
}

func TestResultsBeforeCompletionConflict(t *testing.T) {
	srv, _ := testServer()
	defer srv.Close()

	createRun(t, srv.URL, createRunRequest{RunID: "young", Config: testConfig()})
	resp, err := http.Get(srv.URL + "/v1/runs/young/results")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestStopRun(t *testing.T) {
	srv, _ := testServer()
	defer srv.Close()

	// A far-future arrival keeps the run alive until stopped.
	cfg := testConfig()
	cfg.Simulation.MaxTime = 1e9
	cfg.Tasks[0].ArrivalTime = 1e8

	run := createRun(t, srv.URL, createRunRequest{RunID: "stoppable", Config: cfg, Start: true})
	if run.Status != models.RunStatusRunning {
		t.Fatalf("expected running, got %q", run.Status)
	}

	resp, err := http.Post(srv.URL+"/v1/runs/stoppable:stop", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var stopped models.Run
	if err := json.NewDecoder(resp.Body).Decode(&stopped); err != nil {
		t.Fatal(err)
	}
	if stopped.Status != models.RunStatusCancelled {
		t.Errorf("expected cancelled, got %q", stopped.Status)
	}
}

func TestUnknownRunNotFound(t *testing.T) {
	srv, _ := testServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/runs/ghost")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestListRuns(t *testing.T) {
	srv, _ := testServer()
	defer srv.Close()

	createRun(t, srv.URL, createRunRequest{RunID: "a", Config: testConfig()})
	createRun(t, srv.URL, createRunRequest{RunID: "b", Config: testConfig()})

	resp, err := http.Get(srv.URL + "/v1/runs")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body struct {
		Runs []*models.Run `json:"runs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(body.Runs))
	}
}
