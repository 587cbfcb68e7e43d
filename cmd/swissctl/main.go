// Command swissctl drives a Swiss event from the terminal against a
// jsonstore snapshot file, rendering standings and pairings with
// olekukonko/tablewriter the way dstathis-swisstools.(*Tournament).PrintStandings
// does.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cliffdoyle/swiss-pairing-engine/internal/engine"
	"github.com/cliffdoyle/swiss-pairing-engine/internal/store"
	"github.com/cliffdoyle/swiss-pairing-engine/internal/store/jsonstore"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
)

func main() {
	if len(os.Args) < 3 {
		usage()
		os.Exit(1)
	}

	snapshotPath := os.Args[1]
	cmd := os.Args[2]
	args := os.Args[3:]

	s, err := jsonstore.Open(snapshotPath)
	if err != nil {
		fatalf("opening snapshot: %v", err)
	}
	ctx := context.Background()

	switch cmd {
	case "create":
		runCreate(ctx, s, args)
	case "register":
		runRegister(ctx, s, args)
	case "pair":
		runPair(ctx, s, args)
	case "report":
		runReport(ctx, s, args)
	case "standings":
		runStandings(ctx, s, args)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: swissctl <snapshot.json> <command> [args]

commands:
  create <name> <rounds> <seed> [preset]
  register <tournament-id> <sequence-id> [--late <entry-round>]
  pair <tournament-id> <round>
  report <tournament-id> <match-id> <p1-wins> <p2-wins> [draws]
  standings <tournament-id>`)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "swissctl: "+format+"\n", args...)
	os.Exit(1)
}

func presetConfig(name string, rounds int, seed int64) engine.SwissConfig {
	switch name {
	case "pokemon":
		return engine.PokemonStandard(rounds, seed)
	case "chess":
		return engine.ChessStyle(rounds, seed)
	case "simple":
		return engine.SimpleRandom(rounds, seed)
	default:
		return engine.MTGStandard(rounds, seed)
	}
}

func runCreate(ctx context.Context, s store.Store, args []string) {
	if len(args) < 3 {
		usage()
		os.Exit(1)
	}
	rounds, err := strconv.Atoi(args[1])
	if err != nil {
		fatalf("invalid rounds: %v", err)
	}
	seed, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		fatalf("invalid seed: %v", err)
	}
	preset := "mtg"
	if len(args) > 3 {
		preset = args[3]
	}

	cfg := presetConfig(preset, rounds, seed)
	if err := cfg.Validate(); err != nil {
		fatalf("%v", err)
	}

	tour := store.Tournament{ID: uuid.New(), Name: args[0], Config: cfg}
	if err := s.CreateTournament(ctx, tour); err != nil {
		fatalf("%v", err)
	}
	fmt.Println(tour.ID)
}

func runRegister(ctx context.Context, s store.Store, args []string) {
	if len(args) < 2 {
		usage()
		os.Exit(1)
	}
	tournamentID, err := uuid.Parse(args[0])
	if err != nil {
		fatalf("invalid tournament id: %v", err)
	}
	seq, err := strconv.Atoi(args[1])
	if err != nil {
		fatalf("invalid sequence id: %v", err)
	}

	reg := engine.Registration{
		RegistrationID: uuid.New(),
		PlayerID:       uuid.New(),
		TournamentID:   tournamentID,
		SequenceID:     seq,
		Status:         engine.Active,
	}
	if len(args) >= 4 && args[2] == "--late" {
		entryRound, err := strconv.Atoi(args[3])
		if err != nil {
			fatalf("invalid entry round: %v", err)
		}
		reg.Status = engine.LateEntry
		reg.EntryRound = entryRound
	}

	if err := s.AddRegistration(ctx, reg); err != nil {
		fatalf("%v", err)
	}
	fmt.Println(reg.PlayerID)
}

func runPair(ctx context.Context, s store.Store, args []string) {
	if len(args) < 2 {
		usage()
		os.Exit(1)
	}
	tournamentID, err := uuid.Parse(args[0])
	if err != nil {
		fatalf("invalid tournament id: %v", err)
	}
	round, err := strconv.Atoi(args[1])
	if err != nil {
		fatalf("invalid round: %v", err)
	}

	tour, err := s.GetTournament(ctx, tournamentID)
	if err != nil {
		fatalf("%v", err)
	}
	regs, err := s.ListRegistrations(ctx, tournamentID)
	if err != nil {
		fatalf("%v", err)
	}

	var pairings []engine.Pairing
	if round == 1 {
		pairings, err = engine.PairRound1(regs, tour.Config, tournamentID)
	} else {
		matches, lErr := s.ListMatches(ctx, tournamentID)
		if lErr != nil {
			fatalf("%v", lErr)
		}
		pairings, err = engine.PairRound(regs, matches, round, tour.Config, tournamentID)
	}
	if err != nil {
		var engErr *engine.Error
		if errors.As(err, &engErr) && engErr.Kind == engine.KindImpossiblePairing {
			fmt.Fprintln(os.Stderr, "impossible pairing:", engErr.Message)
			for _, sugg := range engErr.Suggestions {
				fmt.Fprintf(os.Stderr, "  - %s: %s\n", sugg.Action, sugg.Detail)
			}
			os.Exit(2)
		}
		fatalf("%v", err)
	}

	matches, err := s.SavePairings(ctx, tournamentID, pairings)
	if err != nil {
		fatalf("%v", err)
	}
	if err := s.SetCurrentRound(ctx, tournamentID, round); err != nil {
		fatalf("%v", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Table", "Player 1", "Player 2", "Bye"})
	for _, m := range matches {
		p2 := "-"
		bye := "no"
		if m.Player2ID != nil {
			p2 = m.Player2ID.String()
		} else {
			bye = "yes"
		}
		table.Append([]string{strconv.Itoa(m.TableNumber), m.Player1ID.String(), p2, bye})
	}
	table.Render()
}

func runReport(ctx context.Context, s store.Store, args []string) {
	if len(args) < 4 {
		usage()
		os.Exit(1)
	}
	tournamentID, err := uuid.Parse(args[0])
	if err != nil {
		fatalf("invalid tournament id: %v", err)
	}
	matchID, err := uuid.Parse(args[1])
	if err != nil {
		fatalf("invalid match id: %v", err)
	}
	p1Wins, _ := strconv.Atoi(args[2])
	p2Wins, _ := strconv.Atoi(args[3])
	draws := 0
	if len(args) > 4 {
		draws, _ = strconv.Atoi(args[4])
	}

	matches, err := s.ListMatches(ctx, tournamentID)
	if err != nil {
		fatalf("%v", err)
	}
	var target *engine.Match
	for i := range matches {
		if matches[i].MatchID == matchID {
			target = &matches[i]
		}
	}
	if target == nil {
		fatalf("match %s not found", matchID)
	}

	target.Player1GameWins = p1Wins
	target.Player2GameWins = p2Wins
	target.Draws = draws
	now := time.Now()
	target.EndTime = &now

	if err := s.RecordResult(ctx, *target); err != nil {
		fatalf("%v", err)
	}
}

func runStandings(ctx context.Context, s store.Store, args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}
	tournamentID, err := uuid.Parse(args[0])
	if err != nil {
		fatalf("invalid tournament id: %v", err)
	}

	tour, err := s.GetTournament(ctx, tournamentID)
	if err != nil {
		fatalf("%v", err)
	}
	regs, err := s.ListRegistrations(ctx, tournamentID)
	if err != nil {
		fatalf("%v", err)
	}
	matches, err := s.ListMatches(ctx, tournamentID)
	if err != nil {
		fatalf("%v", err)
	}

	entries, err := engine.ComputeStandings(regs, matches, tour.CurrentRound, tour.Config, "final")
	if err != nil {
		fatalf("%v", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Rank", "Player", "Points", "W", "L", "D"})
	for _, e := range entries {
		table.Append([]string{
			strconv.Itoa(e.Rank),
			e.Registration.PlayerID.String(),
			strconv.Itoa(e.MatchPoints),
			strconv.Itoa(e.MatchWins),
			strconv.Itoa(e.MatchLosses),
			strconv.Itoa(e.MatchDraws),
		})
	}
	table.Render()
}
