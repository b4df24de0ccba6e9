package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// activityLine is one row of the activity.json.log file, written by
// pkg/logger's activity handler as {"time": "...", "activity": {...}}.
type activityLine struct {
	Time     string          `json:"time"`
	Activity json.RawMessage `json:"activity"`
}

type queueActivity struct {
	CreationDate string           `json:"creation_date"`
	Max          int              `json:"max,omitempty"`
	Executing    []executingEntry `json:"executing"`
	Errors       int              `json:"errors"`
}

type executingEntry struct {
	FuncName   string `json:"func_name"`
	LaunchTime string `json:"launch_time"`
}

// cmdShowActivity replays an activity.json.log file into the same
// per-queue summary utils.py's show_activity prints: queue creation
// times, configured worker maximums, in-flight jobs, and error counts.
func cmdShowActivity(args []string) error {
	fs := newFlagSet("activity")
	path := fs.String("file", "activity.json.log", "path to the activity log file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := os.Open(*path)
	if err != nil {
		return fmt.Errorf("frestqctl: open activity log: %w", err)
	}
	defer f.Close()

	startDate := ""
	pools := make(map[string]*queueActivity)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line activityLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		var act map[string]any
		if err := json.Unmarshal(line.Activity, &act); err != nil {
			continue
		}
		action, _ := act["action"].(string)

		switch action {
		case "START":
			startDate = line.Time
			pools = make(map[string]*queueActivity)
		case "CREATE_QUEUE":
			queue, _ := act["queue"].(string)
			if queue == "" || pools[queue] != nil {
				continue
			}
			pools[queue] = &queueActivity{CreationDate: line.Time}
		case "SET_QUEUE_MAX":
			queue, _ := act["queue"].(string)
			q := ensureQueue(pools, queue, line.Time)
			if q == nil {
				continue
			}
			if max, ok := act["max"].(float64); ok {
				q.Max = int(max)
			}
		case "EVENT_JOB_LAUNCHING":
			queue, _ := act["queue"].(string)
			q := pools[queue]
			if q == nil {
				fmt.Fprintf(os.Stderr, "error, launching event in an inexistant queue? queue '%s'\n", queue)
				continue
			}
			funcName, _ := act["func_name"].(string)
			q.Executing = append(q.Executing, executingEntry{FuncName: funcName, LaunchTime: line.Time})
		case "EVENT_JOB_ERROR", "EVENT_JOB_EXECUTED":
			queue, _ := act["queue"].(string)
			q := pools[queue]
			if q == nil {
				fmt.Fprintf(os.Stderr, "error, event in an inexistant queue? queue '%s'\n", queue)
				continue
			}
			funcName, _ := act["func_name"].(string)
			removeExecuting(q, funcName)
			if action == "EVENT_JOB_ERROR" {
				q.Errors++
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("frestqctl: read activity log: %w", err)
	}

	out := struct {
		StartDate string                    `json:"start_date"`
		Pools     map[string]*queueActivity `json:"pools"`
	}{StartDate: startDate, Pools: pools}
	return printJSON(out)
}

func ensureQueue(pools map[string]*queueActivity, queue, createdAt string) *queueActivity {
	if queue == "" {
		return nil
	}
	if q, ok := pools[queue]; ok {
		return q
	}
	q := &queueActivity{CreationDate: createdAt}
	pools[queue] = q
	return q
}

func removeExecuting(q *queueActivity, funcName string) {
	for i, e := range q.Executing {
		if e.FuncName == funcName {
			q.Executing = append(q.Executing[:i], q.Executing[i+1:]...)
			return
		}
	}
}
