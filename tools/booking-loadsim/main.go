package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// booking-loadsim fires concurrent bookings for the same specialty and start
// time, then prints how many were admitted. With a capacity of N the expected
// output is admitted=N and rejected=workers-N.
func main() {
	var (
		baseURL   = flag.String("base-url", getenv("BASE_URL", "http://localhost:3002"), "booking service base url")
		specialty = flag.String("specialty-id", getenv("SPECIALTY_ID", ""), "specialty to book")
		start     = flag.String("start", "", "RFC3339 start time (default: tomorrow 10:00 local)")
		duration  = flag.Duration("duration", 30*time.Minute, "appointment length")
		workers   = flag.Int("workers", 20, "concurrent clients")
		phoneBase = flag.String("phone-base", "55119900", "phone prefix for generated clients")
	)
	flag.Parse()

	if strings.TrimSpace(*specialty) == "" {
		fatal("SPECIALTY_ID is required")
	}
	startAt := tomorrowAt(10)
	if *start != "" {
		t, err := time.Parse(time.RFC3339, *start)
		if err != nil {
			fatal("invalid -start: " + err.Error())
		}
		startAt = t
	}
	base := strings.TrimRight(*baseURL, "/") + "/api/v1"
	client := &http.Client{Timeout: 15 * time.Second}

	userIDs := make([]string, 0, *workers)
	for i := 0; i < *workers; i++ {
		id, err := register(client, base, fmt.Sprintf("%s%04d", *phoneBase, i), fmt.Sprintf("Cliente %d", i))
		if err != nil {
			fatal(err.Error())
		}
		userIDs = append(userIDs, id)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		counts = map[int]int{}
	)
	began := time.Now()
	for _, uid := range userIDs {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			status, err := book(client, base, uid, *specialty, startAt, startAt.Add(*duration))
			if err != nil {
				status = -1
			}
			mu.Lock()
			counts[status]++
			mu.Unlock()
		}(uid)
	}
	wg.Wait()

	fmt.Printf("elapsed=%s admitted=%d rejected=%d other=%v\n",
		time.Since(began).Round(time.Millisecond), counts[http.StatusCreated], counts[http.StatusConflict], others(counts))
}

func register(client *http.Client, base, phone, name string) (string, error) {
	var out struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	status, err := post(client, base+"/auth/register", map[string]string{"phone": phone, "name": name}, &out)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", fmt.Errorf("register %s: status %d", phone, status)
	}
	return out.User.ID, nil
}

func book(client *http.Client, base, userID, specialtyID string, start, end time.Time) (int, error) {
	return post(client, base+"/appointments", map[string]any{
		"userId":      userID,
		"specialtyId": specialtyID,
		"startTime":   start.Format(time.RFC3339),
		"endTime":     end.Format(time.RFC3339),
	}, nil)
}

func post(client *http.Client, url string, in any, out any) (int, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return 0, err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
}

func tomorrowAt(hour int) time.Time {
	now := time.Now()
	d := now.AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, now.Location())
}

func others(counts map[int]int) map[int]int {
	out := map[int]int{}
	for k, v := range counts {
		if k != http.StatusCreated && k != http.StatusConflict {
			out[k] = v
		}
	}
	return out
}

func getenv(k, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return fallback
}

func fatal(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
