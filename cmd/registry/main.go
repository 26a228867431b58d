package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/interpretingapp/terpmatch/internal/adapters/postgres"
	"github.com/interpretingapp/terpmatch/internal/core/domain"
	"github.com/interpretingapp/terpmatch/internal/pkg/config"
	"github.com/interpretingapp/terpmatch/internal/pkg/metrics"
)

// ---------------------------------------------------------------------------
// Manifest types
// ---------------------------------------------------------------------------

type Manifest struct {
	Feeds []FeedEntry `json:"feeds"`
}

// FeedEntry is one registry export. URL and Path are alternatives; Path wins
// when both are set.
type FeedEntry struct {
	Name   string `json:"name"`
	Source string `json:"source"` // BEI | RID
	URL    string `json:"url,omitempty"`
	Path   string `json:"path,omitempty"`
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	cfg, err := config.Load("terpmatch-registry")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	repo := postgres.NewInterpreterRepo(db)

	manifestPath := "registry-feeds.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Fatalf("parse manifest: %v", err)
	}

	log.Printf("Registry importer — %d feeds", len(manifest.Feeds))

	// Filter feeds (optional CLI arg: source list, e.g. "BEI,RID")
	sourceFilter := map[string]bool{}
	if len(os.Args) > 2 {
		for _, s := range strings.Split(os.Args[2], ",") {
			sourceFilter[strings.ToUpper(strings.TrimSpace(s))] = true
		}
	}

	client := &http.Client{Timeout: 120 * time.Second}

	var wg sync.WaitGroup
	sem := make(chan struct{}, 4) // max 4 concurrent downloads

	for _, feed := range manifest.Feeds {
		if len(sourceFilter) > 0 && !sourceFilter[strings.ToUpper(feed.Source)] {
			continue
		}

		wg.Add(1)
		go func(f FeedEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := importFeed(ctx, repo, client, f); err != nil {
				log.Printf("ERROR [%s]: %v", f.Name, err)
			}
		}(feed)
	}

	wg.Wait()
	log.Println("registry import complete")
}

// ---------------------------------------------------------------------------
// Per-feed import
// ---------------------------------------------------------------------------

func importFeed(ctx context.Context, repo *postgres.InterpreterRepo, client *http.Client, feed FeedEntry) error {
	src := domain.Source(strings.ToUpper(feed.Source))
	if src != domain.SourceBEI && src != domain.SourceRID {
		return fmt.Errorf("unknown source %q", feed.Source)
	}

	body, err := openFeed(client, feed)
	if err != nil {
		return err
	}
	defer body.Close()

	reader := csv.NewReader(body)
	reader.LazyQuotes = true
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)

	const batchSize = 500
	recs := make([]domain.Interpreter, 0, batchSize)
	total := 0
	skipped := 0

	flush := func() error {
		if len(recs) == 0 {
			return nil
		}
		if err := repo.UpsertBatch(ctx, recs); err != nil {
			return fmt.Errorf("upsert batch: %w", err)
		}
		metrics.RegistryRecordsImported.WithLabelValues(string(src)).Add(float64(len(recs)))
		total += len(recs)
		recs = recs[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		rec, ok := parseRecord(record, cols, src)
		if !ok {
			skipped++
			continue
		}
		recs = append(recs, rec)

		if len(recs) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	log.Printf("[%s] imported %d records (%d skipped)", feed.Name, total, skipped)
	return nil
}

func openFeed(client *http.Client, feed FeedEntry) (io.ReadCloser, error) {
	if feed.Path != "" {
		return os.Open(feed.Path)
	}

	log.Printf("[%s] downloading %s", feed.Name, feed.URL)
	resp, err := client.Get(feed.URL)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, feed.URL)
	}
	return resp.Body, nil
}

// ---------------------------------------------------------------------------
// Record mapping
// ---------------------------------------------------------------------------

// parseRecord maps one CSV row onto an interpreter record. BEI rosters carry
// a single "Certification Level" column; RID exports list certifications
// separated by semicolons. Rows without an ID and name are skipped.
func parseRecord(record []string, cols map[string]int, src domain.Source) (domain.Interpreter, bool) {
	id := getField(record, cols, "id")
	if id == "" {
		id = getField(record, cols, "registry_id")
	}
	name := getField(record, cols, "name")
	if name == "" {
		first := getField(record, cols, "first_name")
		last := getField(record, cols, "last_name")
		name = strings.TrimSpace(first + " " + last)
	}
	if id == "" || name == "" {
		return domain.Interpreter{}, false
	}

	rec := domain.Interpreter{
		ID:     strings.ToLower(string(src)) + "-" + id,
		Name:   name,
		Phone:  getField(record, cols, "phone"),
		Email:  getField(record, cols, "email"),
		Source: src,
		Location: domain.Location{
			City:  getField(record, cols, "city"),
			State: getField(record, cols, "state"),
		},
		ExpirationDate: normalizeDate(getField(record, cols, "expiration_date")),
		Active:         !strings.EqualFold(getField(record, cols, "status"), "inactive"),
	}
	if rec.Location.State == "" && src == domain.SourceBEI {
		rec.Location.State = "TX"
	}

	for _, c := range splitCertifications(getField(record, cols, "certifications"),
		getField(record, cols, "certification_level")) {
		rec.Certifications = append(rec.Certifications, domain.CertificationLevel(c))
	}

	lat, latErr := strconv.ParseFloat(getField(record, cols, "latitude"), 64)
	lng, lngErr := strconv.ParseFloat(getField(record, cols, "longitude"), 64)
	if latErr == nil && lngErr == nil && (lat != 0 || lng != 0) {
		rec.Location.Coordinates = &domain.GeoPoint{Lat: lat, Lng: lng}
	}

	return rec, true
}

func splitCertifications(list, single string) []string {
	var out []string
	for _, c := range strings.Split(list, ";") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	if single = strings.TrimSpace(single); single != "" {
		out = append(out, single)
	}
	return out
}

// normalizeDate accepts YYYY-MM-DD or MM/DD/YYYY and returns YYYY-MM-DD.
// Anything else passes through unchanged; expiry checks treat unparsable
// dates as not expired.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, err := time.Parse("1/2/2006", s); err == nil {
		return t.Format("2006-01-02")
	}
	if t, err := time.Parse("01/02/2006", s); err == nil {
		return t.Format("2006-01-02")
	}
	return s
}

// ---------------------------------------------------------------------------
// CSV helpers
// ---------------------------------------------------------------------------

func indexColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		// Strip BOM from first column
		col = strings.TrimPrefix(col, "\xef\xbb\xbf")
		m[normalizeColumn(col)] = i
	}
	return m
}

// normalizeColumn lowercases and snake_cases a header name, so "Expiration
// Date", "expiration_date" and "ExpirationDate " all resolve the same.
func normalizeColumn(col string) string {
	col = strings.TrimSpace(strings.ToLower(col))
	return strings.ReplaceAll(col, " ", "_")
}

func getField(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
