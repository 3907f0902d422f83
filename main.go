package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"arena-client/config"
	"arena-client/game"
	"arena-client/replay"
	"arena-client/transport"
)

const statsInterval = 10 * time.Second

type options struct {
	record string
	delay  bool
	seed   uint64
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	configPath := flag.String("config", "", "Path to a YAML or JSON config file")
	addr := flag.String("addr", "", "Server websocket URL (overrides config)")
	token := flag.String("token", "", "Session token issued by the server (overrides config)")
	record := flag.String("record", "", "Write a replay of the session to this file")
	delay := flag.Bool("delay", false, "Add the configured artificial latency to received messages")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Seed for the bot's input")
	replayPath := flag.String("replay", "", "Re-simulate a recorded session and exit")
	flag.Parse()

	if *replayPath != "" {
		if err := runReplay(*replayPath); err != nil {
			log.Fatalf("replay: %v", err)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *addr != "" {
		cfg.Net.ServerURL = *addr
	}
	if *token != "" {
		cfg.Net.Token = *token
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, options{record: *record, delay: *delay, seed: *seed}); err != nil {
		log.Fatalf("client: %v", err)
	}
	log.Println("Shutting down...")
}

func run(ctx context.Context, cfg config.Config, opts options) error {
	conn, err := transport.Dial(ctx, cfg.Net.ServerURL, cfg.Net.Token, cfg.Net.InboxSize)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("connected to %s", cfg.Net.ServerURL)

	var rec *replay.Recorder
	if opts.record != "" {
		f, err := os.Create(opts.record)
		if err != nil {
			return fmt.Errorf("create replay: %w", err)
		}
		defer f.Close()
		rec, err = replay.NewRecorder(f, cfg.Sim)
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.Flush(); err != nil {
				log.Printf("flush replay: %v", err)
			}
			log.Printf("recorded %d ticks to %s (replay %s)", rec.Frames(), opts.record, rec.Header().ID)
		}()
	}

	var delayQ *transport.DelayQueue
	if opts.delay {
		delayQ = transport.NewDelayQueue(
			time.Duration(cfg.Net.DelayMs)*time.Millisecond,
			time.Duration(cfg.Net.JitterMs)*time.Millisecond,
			opts.seed,
		)
		log.Printf("simulating %dms ±%dms latency", cfg.Net.DelayMs, cfg.Net.JitterMs/2)
	}

	sim := game.NewSimulation(cfg.Sim)
	b := newBot(opts.seed, botConfig{
		laserCost:   cfg.Sim.LaserEnergyCost,
		bouncyCost:  cfg.Sim.BouncyEnergyCost,
		fireChance:  0.05,
		chaseChance: 0.5,
	})
	ticker := NewTicker(cfg.Sim.TickRate)
	ticker.Start()

	var (
		lastStats   game.Stats
		lastStatsAt = time.Now()
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-conn.Lost():
			if err := conn.Err(); err != nil {
				return fmt.Errorf("connection lost: %w", err)
			}
			return errors.New("server closed the connection")
		default:
		}

		inbound := conn.Drain()
		if delayQ != nil {
			now := time.Now()
			for _, msg := range inbound {
				delayQ.Push(msg, now)
			}
			inbound = delayQ.Pop(now)
		}
		for _, msg := range inbound {
			sim.Enqueue(msg)
		}

		in := b.Next()
		if rec != nil {
			if err := rec.Record(inbound, in); err != nil {
				return err
			}
		}
		if snap, ok := sim.Step(in, conn); ok {
			b.Observe(snap)
		}
		ticker.SetThrottle(sim.Throttled(), cfg.Net.ThrottleFactor)

		if now := time.Now(); now.Sub(lastStatsAt) >= statsInterval {
			stats := sim.Stats()
			log.Printf("stats: %s dropped=%d", stats.Sub(lastStats).Summary(now.Sub(lastStatsAt)), conn.Dropped())
			lastStats, lastStatsAt = stats, now
		}
		ticker.Sleep()
	}
}

func runReplay(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := replay.NewReader(f)
	if err != nil {
		return err
	}
	h := r.Header()
	log.Printf("replaying %s recorded %s", h.ID, h.Recorded.Format(time.RFC3339))

	var last game.Snapshot
	stats, err := replay.Run(r, func(s game.Snapshot) { last = s })
	if err != nil {
		return err
	}
	log.Printf("replay done: %s", stats.Summary(0))
	log.Printf("final local position %.1f,%.1f with %d lasers in flight",
		last.Local.Predicted.Pos.X, last.Local.Predicted.Pos.Y, len(last.Lasers))
	return nil
}
