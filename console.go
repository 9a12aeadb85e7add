package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Console is the line-based operator surface: it maps typed commands onto
// the coordinator's intent methods and prints history from the store.
type Console struct {
	coordinator *Coordinator
	store       *Store
	in          io.Reader
	out         io.Writer
}

// NewConsole creates a console reading commands from in.
func NewConsole(coordinator *Coordinator, store *Store, in io.Reader, out io.Writer) *Console {
	return &Console{coordinator: coordinator, store: store, in: in, out: out}
}

// Run processes commands until EOF, quit, or ctx cancellation.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "commands: call <peer> [name], accept, reject, hangup, status, history [peer], quit")
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "call":
			if len(fields) < 2 {
				fmt.Fprintln(c.out, "usage: call <peer> [name]")
				continue
			}
			name := strings.Join(fields[2:], " ")
			id, err := c.coordinator.PlaceCall(fields[1], name)
			if err != nil {
				fmt.Fprintf(c.out, "call failed: %v\n", err)
				continue
			}
			fmt.Fprintf(c.out, "calling %s (session %s)\n", fields[1], id)
		case "accept":
			if err := c.coordinator.AcceptIncoming(); err != nil {
				fmt.Fprintf(c.out, "accept failed: %v\n", err)
			}
		case "reject":
			if err := c.coordinator.RejectIncoming(); err != nil {
				fmt.Fprintf(c.out, "reject failed: %v\n", err)
			}
		case "hangup":
			if err := c.coordinator.HangUp(); err != nil {
				fmt.Fprintf(c.out, "hangup failed: %v\n", err)
			}
		case "status":
			if s, ok := c.coordinator.ActiveSession(); ok {
				fmt.Fprintf(c.out, "%s with %s (session %s)\n", s.State, s.PeerID, s.ID)
			} else {
				fmt.Fprintln(c.out, "idle")
			}
		case "history":
			c.printHistory(ctx, fields[1:])
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(c.out, "unknown command %q\n", fields[0])
		}
	}
	return scanner.Err()
}

func (c *Console) printHistory(ctx context.Context, args []string) {
	var (
		recs []CallRecord
		err  error
	)
	if len(args) > 0 {
		recs, err = c.store.HistoryForPeer(ctx, args[0], 20)
	} else {
		recs, err = c.store.RecentHistory(ctx, 20)
	}
	if err != nil {
		fmt.Fprintf(c.out, "history failed: %v\n", err)
		return
	}
	if len(recs) == 0 {
		fmt.Fprintln(c.out, "no calls recorded")
		return
	}
	for _, rec := range recs {
		name := rec.PeerName
		if name == "" {
			name = rec.PeerID
		}
		fmt.Fprintf(c.out, "%s  %-8s %-10s %s (%s)\n",
			rec.OccurredAt.Local().Format("2006-01-02 15:04"),
			rec.Role, rec.Outcome, name, formatCallDuration(rec.Duration))
	}
}
