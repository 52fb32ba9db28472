package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"netrunner/pkg/archive"
	"netrunner/pkg/config"
	"netrunner/pkg/save"
)

var (
	configPath string
	savePath   string
	logDir     string
	handle     string
	seed       int64
	noArchive  bool
	freshStart bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "netrunner",
		Short: "A single-player hacking simulator",
		Long: `netrunner drops you into a procedurally generated network of corporations,
agencies and criminal outfits. Scan, exploit and socially engineer your way
through it before the trace catches up with you.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default $NETRUNNER_CONFIG or ./netrunner.yaml)")
	pf.StringVar(&savePath, "save", "", "Save file path")
	pf.StringVar(&logDir, "log-dir", "", "Directory for netrunner.log and error.log")

	play := &cobra.Command{
		Use:   "play",
		Short: "Start or resume a game",
		RunE:  runPlay,
	}
	play.Flags().StringVar(&handle, "handle", "", "Hacker handle for a new game")
	play.Flags().Int64Var(&seed, "seed", 0, "World seed for a new game (0 = random)")
	play.Flags().BoolVar(&noArchive, "no-archive", false, "Do not record saves in the snapshot archive")
	play.Flags().BoolVar(&freshStart, "new", false, "Ignore any existing save and generate a new world")

	inspect := &cobra.Command{
		Use:   "inspect",
		Short: "Summarise the current save without starting the game",
		Args:  cobra.NoArgs,
		RunE:  runInspect,
	}

	rootCmd.AddCommand(play, inspect, newSnapshotsCmd())
	return rootCmd
}

func newSnapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Browse, restore and verify archived saves",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List archived saves",
			Args:  cobra.NoArgs,
			RunE:  runSnapshotsList,
		},
		&cobra.Command{
			Use:   "restore <id>",
			Short: "Make an archived save the current save",
			Args:  cobra.ExactArgs(1),
			RunE:  runSnapshotsRestore,
		},
		&cobra.Command{
			Use:   "verify",
			Short: "Check the archive hash chain",
			Args:  cobra.NoArgs,
			RunE:  runSnapshotsVerify,
		},
	)
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers command-line flags over the file and environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, _, err = config.LoadFromPath(configPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("save") {
		cfg.SavePath = savePath
	}
	if f.Changed("log-dir") {
		cfg.LogDir = logDir
	}
	if f.Lookup("handle") != nil && f.Changed("handle") {
		cfg.Handle = handle
	}
	if f.Lookup("seed") != nil && f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Lookup("no-archive") != nil && noArchive {
		cfg.ArchiveEnabled = false
	}
	return cfg, nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	closeLogs, err := setupLogging(cfg.LogDir)
	if err != nil {
		return err
	}
	defer closeLogs()
	InfoLog.Printf("Starting netrunner (save=%s archive=%v)", cfg.SavePath, cfg.ArchiveEnabled)

	saves := save.NewManager(cfg.SavePath, cfg.LegacySavePath, InfoLog)
	var arc *archive.Archive
	if cfg.ArchiveEnabled {
		arc, err = archive.Open(cfg.ArchivePath, InfoLog)
		if err != nil {
			ErrorLog.Printf("Snapshot archive unavailable: %v", err)
			arc = nil
		} else {
			defer arc.Close()
		}
	}

	c := newConsole(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), saves, cfg.AutosaveInterval.Duration())
	c.start(cfg, freshStart)
	if arc != nil {
		saves.OnSave = func(container []byte, tick uint64, savedAt time.Time) error {
			_, err := arc.Record(container, tick, savedAt, c.g.Seed())
			return err
		}
	}

	stop := c.handleSignals()
	defer stop()
	c.run()
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	doc, err := save.NewManager(cfg.SavePath, cfg.LegacySavePath, nil).Load()
	if errors.Is(err, save.ErrNoSave) {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved game.")
		return nil
	}
	if err != nil {
		return err
	}

	p := doc.Player
	compromised := 0
	for _, n := range doc.Nodes {
		if n.Compromised {
			compromised++
		}
	}
	open := 0
	for _, c := range doc.Contracts {
		if !c.Completed && !c.Failed {
			open++
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Handle:\t%s\n", p.Handle)
	fmt.Fprintf(w, "Level:\t%d (%s XP)\n", p.Level, humanize.Comma(int64(p.Experience)))
	fmt.Fprintf(w, "Credits:\t%s BTC\n", humanize.Comma(int64(p.Credits)))
	fmt.Fprintf(w, "Reputation:\t%d\n", p.Reputation)
	fmt.Fprintf(w, "Heat:\t%d%% (identity %d%%)\n", p.HeatLevel, p.IdentityHeat)
	fmt.Fprintf(w, "World seed:\t%d\n", doc.WorldSeed)
	fmt.Fprintf(w, "Tick:\t%d\n", doc.Tick)
	fmt.Fprintf(w, "Game time:\t%s\n", p.GameTime.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Playtime:\t%s\n", p.TotalPlaytime.Duration().Round(time.Second))
	fmt.Fprintf(w, "Nodes:\t%d discovered / %d total, %d compromised\n", p.DiscoveredNodes.Len(), len(doc.Nodes), compromised)
	fmt.Fprintf(w, "Contracts:\t%d open, %d completed\n", open, p.CompletedContracts.Len())
	if p.UnderInvestigation {
		fmt.Fprintf(w, "Investigation:\t%.0f%%\n", p.InvestigationProgress)
	}
	return w.Flush()
}

func openArchive(cmd *cobra.Command) (*archive.Archive, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	arc, err := archive.Open(cfg.ArchivePath, nil)
	if err != nil {
		return nil, nil, err
	}
	return arc, cfg, nil
}

func runSnapshotsList(cmd *cobra.Command, args []string) error {
	arc, _, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer arc.Close()

	snaps, err := arc.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Archive is empty.")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTICK\tSAVED\tSIZE\tHASH")
	for _, s := range snaps {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", s.ID, s.Tick, humanize.Time(s.SavedAt), humanize.Bytes(uint64(s.Size)), s.FinalHash[:16])
	}
	return w.Flush()
}

func runSnapshotsRestore(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("snapshot id: %w", err)
	}
	arc, cfg, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer arc.Close()

	snap, err := arc.Get(id)
	if err != nil {
		return err
	}
	doc, err := save.NewManager(cfg.SavePath, cfg.LegacySavePath, nil).Restore(snap.Blob)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restored snapshot %d (tick %d, %s) to %s\n", snap.ID, doc.Tick, doc.Player.Handle, cfg.SavePath)
	return nil
}

func runSnapshotsVerify(cmd *cobra.Command, args []string) error {
	arc, _, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer arc.Close()

	n, err := arc.Verify()
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%d snapshots intact before the break\n", n)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Chain intact: %d snapshots\n", n)
	return nil
}
