package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"info-seeker-be/internal/bootstrap"
	"info-seeker-be/internal/config"
	"info-seeker-be/internal/websocket"
	"info-seeker-be/pkg/database"
	"info-seeker-be/pkg/events"
	pktNats "info-seeker-be/pkg/nats"
	"info-seeker-be/pkg/pipeline"
	"info-seeker-be/pkg/progress"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	query := flag.String("q", "", "query to research")
	includeKB := flag.Bool("kb", true, "search the knowledge base")
	includeWeb := flag.Bool("web", true, "search the web")
	watch := flag.Bool("watch", false, "print search lifecycle events from NATS instead of running a query")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	if *watch {
		if err := watchEvents(ctx, cfg.App.NatsURL); err != nil {
			color.Red("Watch failed: %v", err)
			os.Exit(1)
		}
		return
	}

	if strings.TrimSpace(*query) == "" {
		*query = strings.Join(flag.Args(), " ")
	}
	if strings.TrimSpace(*query) == "" {
		color.Red("Usage: search -q \"your question\" [-kb=false] [-web=false]")
		os.Exit(2)
	}

	var db *gorm.DB
	if cfg.Database.Connection != "" {
		gdb, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
		if err != nil {
			color.Yellow("Database unavailable, continuing without it: %v", err)
		} else {
			db = gdb
		}
	}

	container, err := bootstrap.NewContainer(db, cfg)
	if err != nil {
		color.Red("Bootstrap failed: %v", err)
		os.Exit(1)
	}
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.DrainTimeout)
		defer cancel()
		_ = container.Shutdown(drainCtx)
	}()

	sessionID := uuid.NewString()
	color.Cyan("🔎 %s (session %s)\n", *query, sessionID)

	container.ProgressBus.Connect(sessionID)

	var result *pipeline.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := container.Pipeline.Run(gctx, *query, sessionID, pipeline.Options{
			IncludeKB:  *includeKB,
			IncludeWeb: *includeWeb,
		})
		result = res
		return err
	})
	g.Go(func() error {
		err := websocket.Stream(gctx, container.ProgressBus, sessionID, websocket.DefaultStreamConfig(), printEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		color.Red("\nSearch failed: %v", err)
		os.Exit(1)
	}

	printResult(result)
}

func printEvent(ev progress.Event) error {
	stamp := ev.Timestamp.Format("15:04:05")
	switch {
	case ev.Type == progress.EventHeartbeat:
		return nil
	case ev.Type == progress.EventError || ev.Status == progress.StatusError:
		color.Red("[%s] %-14s %s", stamp, ev.Agent, ev.Message)
	case ev.Status == progress.StatusCompleted:
		color.Green("[%s] %-14s %s", stamp, ev.Agent, ev.Message)
	default:
		color.White("[%s] %-14s %s", stamp, ev.Agent, ev.Message)
	}
	return nil
}

func printResult(res *pipeline.Result) {
	if res == nil {
		return
	}
	color.Yellow("\n=== Answer ===")
	fmt.Println(res.Answer)

	color.Yellow("\n=== Sources ===")
	for i, s := range res.Sources {
		fmt.Printf("[%d] %s (%s) %s\n", i+1, s.Title, s.Origin, s.URL)
	}

	color.Yellow("\n=== Confidence ===")
	color.Cyan("final %.2f | base %.2f | quality %.2f | coverage %s",
		res.Scores.FinalConfidence,
		res.Scores.BaseScore,
		res.Scores.QualityScore,
		res.Metadata.Coverage,
	)
	if len(res.Metadata.BranchFailure) > 0 {
		color.Red("failed branches: %s", strings.Join(res.Metadata.BranchFailure, ", "))
	}
}

func watchEvents(ctx context.Context, natsURL string) error {
	sub, err := pktNats.NewSubscriber(natsURL)
	if err != nil {
		return err
	}
	defer sub.Close()

	err = sub.Subscribe(ctx, pktNats.Subject(">"), "", func(_ context.Context, ev events.Event) error {
		payload, _ := json.Marshal(ev.Payload())
		line := fmt.Sprintf("[%s] %s %s", ev.Timestamp().Format(time.RFC3339), ev.EventType(), payload)
		if ev.EventType() == events.TypeSearchFailed {
			color.Red("%s", line)
		} else {
			color.Green("%s", line)
		}
		return nil
	})
	if err != nil {
		return err
	}

	color.Cyan("Watching %s (Ctrl+C to stop)", pktNats.Subject(">"))
	<-ctx.Done()
	return nil
}
