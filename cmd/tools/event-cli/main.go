package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/annel0/worldcore/internal/eventbus"
	"github.com/annel0/worldcore/internal/storage"
)

const (
	defaultNatsURL = "nats://127.0.0.1:4222"
	timeFormat     = "2006-01-02T15:04:05Z"
)

func main() {
	var (
		natsURL = flag.String("nats", envOr("WORLD_NATS_URL", defaultNatsURL), "NATS server URL")
		stream  = flag.String("stream", "EVENTS", "JetStream stream name")
		command = flag.String("cmd", "tail", "Command: tail, stats")
		worlds  = flag.String("worlds", "", "World IDs filter (comma-separated)")
		since   = flag.String("since", "1h", "Time duration since now (e.g., 1h, 30m) or RFC3339 time")
		limit   = flag.Int("limit", 100, "Maximum number of events")
		follow  = flag.Bool("follow", false, "Follow new events (like tail -f)")
	)
	flag.Parse()

	nc, err := nats.Connect(*natsURL, nats.Name("event-cli"))
	if err != nil {
		log.Fatalf("❌ Failed to connect to NATS: %v", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		log.Fatalf("❌ JetStream unavailable: %v", err)
	}

	start, err := parseSinceTime(*since, time.Now())
	if err != nil {
		log.Fatalf("❌ Invalid since: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	filter := newWorldFilter(parseStringList(*worlds))

	switch *command {
	case "tail":
		if err := tailEvents(ctx, js, &TailOptions{
			Stream: *stream,
			Start:  start,
			Filter: filter,
			Limit:  *limit,
			Follow: *follow,
		}); err != nil {
			log.Fatalf("❌ Tail failed: %v", err)
		}

	case "stats":
		if err := showStats(ctx, js, *stream, start, filter); err != nil {
			log.Fatalf("❌ Stats failed: %v", err)
		}

	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: tail, stats")
		os.Exit(1)
	}
}

type TailOptions struct {
	Stream string
	Start  time.Time
	Filter worldFilter
	Limit  int
	Follow bool
}

// worldFilter пропускает события выбранных миров (пустой - все)
type worldFilter map[string]struct{}

func newWorldFilter(ids []string) worldFilter {
	f := make(worldFilter, len(ids))
	for _, id := range ids {
		f[id] = struct{}{}
	}
	return f
}

func (f worldFilter) match(worldID string) bool {
	if len(f) == 0 {
		return true
	}
	_, ok := f[worldID]
	return ok
}

// subscribe открывает эфемерного consumer'а на WorldUpdated с момента start
func subscribe(js nats.JetStreamContext, stream string, start time.Time) (*nats.Subscription, error) {
	return js.SubscribeSync("events."+eventbus.WorldUpdatedEvent,
		nats.BindStream(stream),
		nats.StartTime(start),
		nats.AckNone(),
	)
}

// decode разбирает сообщение стрима
func decode(msg *nats.Msg) (*eventbus.Envelope, storage.WorldUpdate, error) {
	var ev eventbus.Envelope
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		return nil, storage.WorldUpdate{}, err
	}
	u, err := storage.DecodeWorldUpdate(&ev)
	return &ev, u, err
}

// tailEvents выводит события мира; с -follow ждёт новые
func tailEvents(ctx context.Context, js nats.JetStreamContext, opts *TailOptions) error {
	fmt.Printf("🎬 Tailing %s since %s (limit: %d, follow: %v)\n",
		eventbus.WorldUpdatedEvent, opts.Start.UTC().Format(timeFormat), opts.Limit, opts.Follow)

	sub, err := subscribe(js, opts.Stream, opts.Start)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	wait := 2 * time.Second
	if opts.Follow {
		wait = time.Hour
	}

	eventCount := 0
	for opts.Follow || eventCount < opts.Limit {
		msgCtx, cancel := context.WithTimeout(ctx, wait)
		msg, err := sub.NextMsgWithContext(msgCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && !opts.Follow {
				break
			}
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			return fmt.Errorf("stream error: %w", err)
		}

		ev, u, err := decode(msg)
		if err != nil {
			fmt.Printf("⚠️  skip malformed event: %v\n", err)
			continue
		}
		if !opts.Filter.match(u.WorldID) {
			continue
		}

		printEvent(ev, u)
		eventCount++
	}

	fmt.Printf("\n📊 Total events: %d\n", eventCount)
	return nil
}

// showStats считает мутации по мирам и фактам
func showStats(ctx context.Context, js nats.JetStreamContext, stream string, start time.Time, filter worldFilter) error {
	fmt.Println("📊 World fact statistics")

	sub, err := subscribe(js, stream, start)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	counts := make(map[string]map[string]int)
	total := 0
	for {
		msgCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		msg, err := sub.NextMsgWithContext(msgCtx)
		cancel()
		if err != nil {
			break
		}
		_, u, err := decode(msg)
		if err != nil || !filter.match(u.WorldID) {
			continue
		}
		if counts[u.WorldID] == nil {
			counts[u.WorldID] = make(map[string]int)
		}
		counts[u.WorldID][u.Kind()]++
		total++
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("Since: %s\n", start.UTC().Format(timeFormat))
	fmt.Printf("Total events: %d\n", total)
	for _, id := range ids {
		fmt.Printf("  %s: time=%d days=%d\n", id, counts[id]["time"], counts[id]["days"])
	}
	return nil
}

// printEvent выводит событие в читаемом формате
func printEvent(ev *eventbus.Envelope, u storage.WorldUpdate) {
	fmt.Printf("[%s] %s [%s] %s\n",
		ev.Timestamp.Format("15:04:05"),
		ev.Source,
		ev.EventType,
		ev.ID)
	fmt.Printf("  %s\n", u)
}

// parseStringList парсит строку с разделителями-запятыми
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseSinceTime парсит относительное время типа "1h", "30m"
func parseSinceTime(since string, from time.Time) (time.Time, error) {
	if since == "" {
		return from, nil
	}

	duration, err := time.ParseDuration(since)
	if err != nil {
		// Пробуем парсить как абсолютное время
		return time.Parse(timeFormat, since)
	}

	return from.Add(-duration), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
