package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"

	"github.com/dot5enko/segment-rc/compression"
	"github.com/dot5enko/segment-rc/manager"
	"github.com/dot5enko/segment-rc/rc"
	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

const defaultFilter = `{
	"type": "and",
	"children": [
		{"type": "greater_equal", "attr": {"name": "value", "type": "uint64"}, "value": 1000},
		{"type": "less_equal", "attr": {"name": "value", "type": "uint64"}, "value": 2000},
		{"type": "not", "children": [
			{"type": "in", "attr": {"name": "status", "type": "string"}, "value": ["failed", "timeout"]}
		]}
	]
}`

func testCycles(n int, label string, cb func()) {

	before := time.Now()

	for range n {
		cb()
	}

	after := time.Since(before)

	perCycle := after.Nanoseconds() / int64(max(n, 1))
	log.Printf(" %s per cycle : %d/ns", label, perCycle)
}

// gen_fake_data builds a health check log: created_at grows with the row,
// value is random and latency is missing on some rows.
func gen_fake_data(size int) (*segment.Memory, error) {

	createdAt := make([]int64, size)
	values := make([]int64, size)
	statuses := make([]string, size)
	latency := make([]float64, size)
	latencyNulls := make([]bool, size)

	start := time.Now().Add(-time.Duration(size) * time.Second).Unix()

	for i := 0; i < size; i++ {
		createdAt[i] = start + int64(i)
		values[i] = rand.Int63n(50000)
		statuses[i] = []string{"ok", "ok", "ok", "degraded", "failed", "timeout"}[rand.Intn(6)]

		if statuses[i] == "timeout" {
			latencyNulls[i] = true
		} else {
			latency[i] = rand.Float64() * 250
		}
	}

	for i := 0; i < min(size, 10); i++ {
		log.Printf("%d : %v %v %s", i, createdAt[i], values[i], statuses[i])
	}

	log.Printf("generated %d items ", size)

	return segment.NewBuilder(segment.DefaultPackRows).
		AddInts("created_at", schema.Uint64FieldType, createdAt, nil).
		AddInts("value", schema.Uint64FieldType, values, nil).
		AddStrings("status", statuses, nil).
		AddFloats("latency", schema.Float32FieldType, latency, latencyNulls).
		Build()
}

func main() {

	configPath := flag.String("config", "", "TOML manager config, flags override it")
	storagePath := flag.String("storage", "./storage", "directory holding segment files")
	compressionName := flag.String("compression", "lz4", "pack compression: none, lz4 or zstd")
	rows := flag.Int("rows", 1_000_000, "rows of fake data to generate")
	filterJSON := flag.String("filter", defaultFilter, "filter as a JSON operator tree")
	dump := flag.Bool("dump", false, "dump the normalized operator tree")
	repeat := flag.Int("repeat", 0, "evaluate the filter this many more times and report the mean")
	flag.Parse()

	config := manager.ManagerConfig{UseMmap: true}
	if *configPath != "" {
		loaded, err := manager.LoadConfig(*configPath)
		if err != nil {
			panic(err)
		}
		config = loaded
	}

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "storage" {
			config.PathToStorage = *storagePath
		}
	})
	if config.PathToStorage == "" {
		config.PathToStorage = *storagePath
	}

	compressionType, parseErr := compression.ParseType(*compressionName)
	if parseErr != nil {
		panic(parseErr)
	}

	m := manager.New(config)
	defer m.Close()

	data, genErr := gen_fake_data(*rows)
	if genErr != nil {
		panic(genErr)
	}

	segmentId, writeErr := m.WriteSegment(data, compressionType)
	if writeErr != nil {
		panic(writeErr)
	}

	color.Green("segment %s written to %s", segmentId.String(), m.SegmentPath(segmentId))

	op, decodeErr := rc.Unmarshal([]byte(*filterJSON))
	if decodeErr != nil {
		color.Red("bad filter: %s", decodeErr.Error())
		return
	}

	normalized := rc.Optimize(op)
	fmt.Printf("filter     : %s\n", op.String())
	fmt.Printf("normalized : %s\n", normalized.String())

	if *dump {
		spew.Dump(normalized)
	}

	result, filterErr := m.FilterOperator(context.Background(), segmentId, normalized)
	if filterErr != nil {
		color.Red("filter failed: %s", filterErr.Error())
		return
	}
	defer result.Free()

	color.Cyan("matched %d of %d rows in %s", result.MatchedRows, data.RowCount(), result.Took)
	color.Yellow("packs: %d skipped, %d full, %d exact of %d", result.SkippedPacks, result.FullPacks, result.ExactPacks, result.Packs)

	ids := result.RowIds()
	fmt.Printf("first rows : %v\n", ids[:min(len(ids), 10)])

	if *repeat > 0 {
		testCycles(*repeat, "filter", func() {
			again, err := m.FilterOperator(context.Background(), segmentId, normalized)
			if err != nil {
				panic(err)
			}
			again.Free()
		})
	}

	stats := m.CacheStats()
	log.Printf("pack cache: %d items, %d hits, %d misses, %d evictions", stats.Items, stats.Hits, stats.Misses, stats.Evictions)

	buffers := m.BufferStats()
	log.Printf("read buffers: %d borrowed, %d allocated while busy", buffers.Borrowed, buffers.Busy)
}
