package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"code.cloudfoundry.org/bytefmt"

	"github.com/matheus3301/wxbak/internal/config"
	"github.com/matheus3301/wxbak/internal/conversation"
	"github.com/matheus3301/wxbak/internal/export"
	"github.com/matheus3301/wxbak/internal/fixture"
	"github.com/matheus3301/wxbak/internal/identity"
	"github.com/matheus3301/wxbak/internal/layout"
	"github.com/matheus3301/wxbak/internal/logging"
	"github.com/matheus3301/wxbak/internal/message"
)

type env struct {
	cfg     *config.Config
	ix      *conversation.Indexer
	jsonOut bool
}

func main() {
	configFlag := flag.String("config", "", "config file (overrides WXBAK_CONFIG)")
	rootFlag := flag.String("root", "", "backup root directory (overrides config)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(config.ResolvePath(*configFlag))
	if err != nil {
		fatal(err)
	}
	if *rootFlag != "" {
		cfg.BackupRoot = *rootFlag
	}

	logger, err := logging.New(logging.Options{
		Path:      cfg.LogFile,
		Level:     cfg.LogLevel,
		MaxSizeMB: cfg.LogMaxSizeMB,
		Component: "wxbakctl",
		Quiet:     true,
	})
	if err != nil {
		fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		fatal(err)
	}
	e := &env{
		cfg: cfg,
		ix: conversation.New(logger,
			conversation.WithLocation(loc),
			conversation.WithWindow(conversation.WindowPolicy(cfg.DefaultWindow)),
			conversation.WithLimit(cfg.PageSize),
		),
		jsonOut: *jsonFlag,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "demo":
		cmdDemo(rest)
		return
	case "status":
		cmdStatus(ctx, e)
		return
	}
	if cfg.BackupRoot == "" {
		fatal(fmt.Errorf("no backup root: pass --root or set backup_root"))
	}

	switch cmd {
	case "users":
		cmdUsers(e)
	case "chats":
		cmdChats(ctx, e, rest)
	case "messages":
		cmdMessages(ctx, e, rest)
	case "dates":
		cmdDates(ctx, e, rest)
	case "stats":
		cmdStats(ctx, e, rest)
	case "export":
		cmdExport(ctx, e, rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: wxbakctl [--config <file>] [--root <dir>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  users                          List accounts in the backup")
	fmt.Fprintln(os.Stderr, "  chats <md5> [--min N]          List conversations, newest first")
	fmt.Fprintln(os.Stderr, "  messages <md5> <table>         Show a page of messages")
	fmt.Fprintln(os.Stderr, "  dates <md5> <table>            List days with messages")
	fmt.Fprintln(os.Stderr, "  stats <md5> <table>            Show conversation statistics")
	fmt.Fprintln(os.Stderr, "  export <md5> <table>           Export a conversation as JSON or HTML")
	fmt.Fprintln(os.Stderr, "  demo <dir>                     Write a sample backup to dir")
	fmt.Fprintln(os.Stderr, "  status                         Query a running wxbakd")
}

func cmdUsers(e *env) {
	accounts := identity.ListAccounts(e.cfg.BackupRoot)
	if e.jsonOut {
		outputJSON(accounts)
		return
	}
	if len(accounts) == 0 {
		fmt.Println("No accounts found.")
		return
	}
	for _, a := range accounts {
		size := bytefmt.ByteSize(dirSize(layout.DBDir(e.cfg.BackupRoot, a.Hash)))
		fmt.Printf("%s  %-24s %8s  %s\n", a.Hash, a.ExternalID, size, a.DisplayName)
	}
}

// dirSize sums the regular files below dir; unreadable entries count 0.
func dirSize(dir string) uint64 {
	var total uint64
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += uint64(info.Size())
		}
		return nil
	})
	return total
}

func cmdChats(ctx context.Context, e *env, args []string) {
	flags := flag.NewFlagSet("chats", flag.ExitOnError)
	minCount := flags.Int("min", e.cfg.MinMessageCount, "hide conversations with at most this many messages")
	hash := positional(flags, args, "chats <md5>", 1)[0]

	chats, err := e.ix.List(ctx, e.cfg.BackupRoot, hash, *minCount)
	if err != nil {
		fatal(err)
	}
	if e.jsonOut {
		outputJSON(chats)
		return
	}
	if len(chats) == 0 {
		fmt.Println("No conversations found.")
		return
	}
	for _, c := range chats {
		fmt.Printf("%-44s %6d  %s  %-20s %s\n",
			c.TableName, c.MessageCount, e.when(c.LastMessageAt), c.Contact.Nickname, c.LastMessagePreview)
	}
}

func cmdMessages(ctx context.Context, e *env, args []string) {
	flags := flag.NewFlagSet("messages", flag.ExitOnError)
	start := flags.String("start", "", "first day, YYYY-MM-DD")
	end := flags.String("end", "", "last day, YYYY-MM-DD")
	limit := flags.Int("limit", 0, "page size (0 = config page_size)")
	offset := flags.Int("offset", 0, "messages to skip")
	all := flags.Bool("all", false, "ignore the latest-day default window")
	pos := positional(flags, args, "messages <md5> <table>", 2)

	q := conversation.Query{
		Root:        e.cfg.BackupRoot,
		AccountHash: pos[0],
		Table:       pos[1],
		Start:       *start,
		End:         *end,
		Limit:       *limit,
		Offset:      *offset,
	}
	if *all {
		q.Window = conversation.AllMessages
	}
	page, err := e.ix.Messages(ctx, q)
	if err != nil {
		fatal(err)
	}
	if e.jsonOut {
		outputJSON(page)
		return
	}
	fmt.Printf("%s (%s)\n", page.Contact.Nickname, page.Contact.ExternalID)
	for _, m := range export.Chronological(page.Messages) {
		who := "<"
		if m.Direction == message.Sent {
			who = ">"
		}
		if m.Sender != "" {
			who += " " + m.Sender + ":"
		}
		fmt.Printf("%s %s %s\n", e.when(m.CreateTime), who, m.Content)
	}
}

func cmdDates(ctx context.Context, e *env, args []string) {
	flags := flag.NewFlagSet("dates", flag.ExitOnError)
	pos := positional(flags, args, "dates <md5> <table>", 2)

	dates, err := e.ix.Dates(ctx, e.cfg.BackupRoot, pos[0], pos[1])
	if err != nil {
		fatal(err)
	}
	if e.jsonOut {
		outputJSON(dates)
		return
	}
	for _, d := range dates {
		fmt.Println(d)
	}
}

func cmdStats(ctx context.Context, e *env, args []string) {
	flags := flag.NewFlagSet("stats", flag.ExitOnError)
	pos := positional(flags, args, "stats <md5> <table>", 2)

	stats, err := e.ix.Stats(ctx, e.cfg.BackupRoot, pos[0], pos[1])
	if err != nil {
		fatal(err)
	}
	if e.jsonOut {
		outputJSON(stats)
		return
	}
	fmt.Printf("Total:    %d\n", stats.Total)
	fmt.Printf("Sent:     %d\n", stats.Sent)
	fmt.Printf("Received: %d\n", stats.Received)
	if stats.Total > 0 {
		fmt.Printf("First:    %s\n", e.when(stats.First))
		fmt.Printf("Last:     %s\n", e.when(stats.Last))
	}
	for _, k := range message.Kinds() {
		if n := stats.ByKind[k.String()]; n > 0 {
			fmt.Printf("  %-10s %d\n", k, n)
		}
	}
}

func cmdExport(ctx context.Context, e *env, args []string) {
	flags := flag.NewFlagSet("export", flag.ExitOnError)
	format := flags.String("format", "json", "json or html")
	out := flags.String("out", "", "output file (default: stdout for html, <nickname>_chat.json for json)")
	start := flags.String("start", "", "first day, YYYY-MM-DD")
	end := flags.String("end", "", "last day, YYYY-MM-DD")
	pos := positional(flags, args, "export <md5> <table>", 2)

	conv, err := e.ix.Conversation(ctx, e.cfg.BackupRoot, pos[0], pos[1])
	if err != nil {
		fatal(err)
	}
	page, err := e.ix.Messages(ctx, conversation.Query{
		Root:        e.cfg.BackupRoot,
		AccountHash: pos[0],
		Table:       pos[1],
		Start:       *start,
		End:         *end,
		Limit:       e.cfg.ExportLimit,
		Window:      conversation.AllMessages,
	})
	if err != nil {
		fatal(err)
	}
	entries := export.Chronological(page.Messages)

	var w io.Writer = os.Stdout
	path := *out
	if path == "" && *format == "json" {
		path = export.Filename(*conv)
	}
	if path != "" && path != "-" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			fatal(err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(export.JSON(*conv, entries))
	case "html":
		err = export.HTML(w, *conv, entries, e.ix.Location())
	default:
		err = fmt.Errorf("unknown format %q", *format)
	}
	if err != nil {
		fatal(err)
	}
	if w != os.Stdout {
		fmt.Fprintf(os.Stderr, "wrote %d messages to %s\n", len(entries), path)
	}
}

func cmdDemo(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: wxbakctl demo <dir>")
		os.Exit(1)
	}
	if _, err := fixture.WriteDemo(args[0], time.Now()); err != nil {
		fatal(err)
	}
	fmt.Printf("Demo backup written to %s\n", args[0])
}

func cmdStatus(ctx context.Context, e *env) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+e.cfg.ListenAddr+"/healthz", nil)
	if err != nil {
		fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatal(fmt.Errorf("cannot reach wxbakd at %s: %w", e.cfg.ListenAddr, err))
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Data struct {
			State string `json:"state"`
			Since int64  `json:"since"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		fatal(err)
	}
	if e.jsonOut {
		outputJSON(body.Data)
		return
	}
	fmt.Printf("Listen: %s\n", e.cfg.ListenAddr)
	fmt.Printf("State:  %s\n", body.Data.State)
	fmt.Printf("Since:  %s\n", e.when(body.Data.Since))
}

// positional parses flags after the leading non-flag arguments and returns
// the first want of them, exiting with usage when any is missing.
func positional(flags *flag.FlagSet, args []string, usage string, want int) []string {
	n := 0
	for n < len(args) && n < want && len(args[n]) > 0 && args[n][0] != '-' {
		n++
	}
	_ = flags.Parse(args[n:])
	if n < want {
		fmt.Fprintf(os.Stderr, "usage: wxbakctl %s\n", usage)
		flags.PrintDefaults()
		os.Exit(1)
	}
	return args[:want]
}

func (e *env) when(ts int64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(ts, 0).In(e.ix.Location()).Format("2006-01-02 15:04")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
