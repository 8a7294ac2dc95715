// Package main provides an operator CLI for the session store.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	"github.com/voxdj/voxdj/internal/domain/hexid"
	"github.com/voxdj/voxdj/internal/domain/session"
	"github.com/voxdj/voxdj/internal/infra/config"
	"github.com/voxdj/voxdj/internal/infra/logger"
	"github.com/voxdj/voxdj/internal/infra/store"
)

var (
	app        = kingpin.New("voxdj-sessionctl", "voxdj session store inspector")
	configPath = app.Flag("config", "Path to config file").Default("config/voxdj.yaml").String()

	// show command
	showCmd  = app.Command("show", "Show a user's session record")
	showUser = showCmd.Arg("user-id", "User ID").Required().String()

	// list command
	listCmd = app.Command("list", "List users with stored sessions")

	// reset command
	resetCmd  = app.Command("reset", "Reset a user's session to defaults")
	resetUser = resetCmd.Arg("user-id", "User ID").Required().String()

	// set-resolver command
	setResolverCmd  = app.Command("set-resolver", "Set a user's resolver address")
	setResolverUser = setResolverCmd.Arg("user-id", "User ID").Required().String()
	setResolverURL  = setResolverCmd.Arg("url", "Resolver base URL").Required().String()

	// encode command
	encodeCmd   = app.Command("encode", "Hex-encode an identifier for the voice channel")
	encodeValue = encodeCmd.Arg("value", "Identifier to encode").Required().String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == encodeCmd.FullCommand() {
		fmt.Println(hexid.Encode(*encodeValue))
		return
	}

	// Keep store logs out of the CLI output
	if err := logger.Init(logger.Config{Output: "stderr", Level: "error"}); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	sessions, err := store.NewFromConfig(cfg.Store)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer sessions.Close()

	ctx := context.Background()

	switch command {
	case showCmd.FullCommand():
		show(ctx, sessions, *showUser)
	case listCmd.FullCommand():
		list(sessions)
	case resetCmd.FullCommand():
		save(ctx, sessions, *resetUser, session.NewRecord())
		fmt.Printf("Session for %s reset.\n", *resetUser)
	case setResolverCmd.FullCommand():
		rec := load(ctx, sessions, *setResolverUser)
		rec.ResolverURL = *setResolverURL
		save(ctx, sessions, *setResolverUser, rec)
		fmt.Printf("Resolver for %s set to %s.\n", *setResolverUser, *setResolverURL)
	}
}

func show(ctx context.Context, sessions store.Store, userID string) {
	rec := load(ctx, sessions, userID)

	fmt.Printf("\n=== SESSION %s ===\n", userID)
	fmt.Printf("Resolver URL: %s\n", rec.ResolverURL)
	fmt.Printf("Queue Size: %d\n", rec.QueueLen())
	fmt.Printf("Position: %d (offset %dms)\n", rec.Playback.Index, rec.Playback.OffsetMS)
	fmt.Printf("Loop: %v, Shuffle: %v\n", rec.Settings.Loop, rec.Settings.Shuffle)
	fmt.Printf("In Playback Session: %v\n", rec.Playback.InPlaybackSession)

	if md, ok := rec.CurrentTrack(); ok {
		fmt.Printf("\nCurrent Track:\n")
		fmt.Printf("  ID: %s\n", md.ID)
		fmt.Printf("  Title: %s\n", md.Title)
		fmt.Printf("  Artist: %s\n", md.Artist)
	}

	if len(rec.SavedPlaylists) > 0 {
		fmt.Printf("\nSaved Playlists:\n")
		for name, pl := range rec.SavedPlaylists {
			fmt.Printf("  %s (%s)\n", name, pl.ID)
		}
	}
}

func list(sessions store.Store) {
	boltStore, ok := sessions.(*store.BoltStore)
	if !ok {
		fmt.Println("Error: list requires the bolt backend")
		os.Exit(1)
	}
	ids, err := boltStore.UserIDs()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	for _, id := range ids {
		fmt.Println(id)
	}
}

func load(ctx context.Context, sessions store.Store, userID string) *session.Record {
	rec, err := sessions.Load(ctx, userID)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	return rec
}

func save(ctx context.Context, sessions store.Store, userID string, rec *session.Record) {
	if err := sessions.Save(ctx, userID, rec); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
