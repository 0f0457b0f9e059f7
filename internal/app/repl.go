package app

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nOkuda/participation-tracker/internal/config"
	"github.com/nOkuda/participation-tracker/internal/ctxutil"
	"github.com/nOkuda/participation-tracker/internal/db"
	"github.com/nOkuda/participation-tracker/internal/export"
	"github.com/nOkuda/participation-tracker/internal/gate"
	"github.com/nOkuda/participation-tracker/internal/lookup"
	"github.com/nOkuda/participation-tracker/internal/metrics"
	"github.com/nOkuda/participation-tracker/internal/observability"
	"github.com/nOkuda/participation-tracker/internal/picker"
)

// REPL is the interactive operator surface. It owns no business rules: every
// command re-validates through the core and reports errors for manual retry.
type REPL struct {
	DB     *sql.DB
	Cfg    *config.Config
	Log    *zap.SugaredLogger
	Index  *lookup.Index
	Picker *picker.Picker
	Policy db.PointsPolicy

	In  io.Reader
	Out io.Writer
}

func (r *REPL) printf(format string, args ...any) {
	fmt.Fprintf(r.Out, format+"\n", args...)
}

// Run reads commands until EOF or quit. Errors never abort the loop.
func (r *REPL) Run(ctx context.Context) error {
	if r.In == nil {
		r.In = os.Stdin
	}
	if r.Out == nil {
		r.Out = os.Stdout
	}

	sc := bufio.NewScanner(r.In)
	r.printf("commands: pick, record, redeem, refresh, summary, export, roster, categories, quit")
	for {
		fmt.Fprint(r.Out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		if err := r.dispatch(ctx, cmd, args, sc); err != nil {
			observability.CaptureErr(cmd, err)
			r.printf("error: %v", err)
		}
	}
}

func (r *REPL) dispatch(ctx context.Context, cmd string, args []string, sc *bufio.Scanner) error {
	ctx = ctxutil.WithOp(ctx, cmd)
	switch cmd {
	case "pick":
		return r.cmdPick(args)
	case "record":
		return r.cmdRecord(ctx, args)
	case "redeem":
		return r.cmdRedeem(ctx, args, sc)
	case "refresh":
		return r.cmdRefresh(ctx)
	case "summary":
		return r.cmdSummary(ctx)
	case "export":
		return r.cmdExport(ctx, args)
	case "roster":
		return r.cmdRoster(ctx, args)
	case "categories":
		return r.cmdCategories(ctx)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (r *REPL) cmdPick(args []string) error {
	query := strings.Join(args, " ")
	s, err := r.Picker.Pick(query)
	if err != nil {
		return err
	}
	mode := "fuzzy"
	if strings.TrimSpace(query) == "" {
		mode = "random"
	}
	metrics.PickerDraws.WithLabelValues(mode).Inc()
	r.printf("%d\t%s\t%s", s.ID, s.Name, s.Username)
	return nil
}

// record <category> <ok|miss> [name query]
func (r *REPL) cmdRecord(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: record <category> <ok|miss> [name]")
	}
	satisfactory, err := parseSatisfactory(args[1])
	if err != nil {
		return err
	}

	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	cat, err := db.CategoryByName(dbCtx, r.DB, args[0])
	if err != nil {
		return err
	}
	student, err := r.Picker.Pick(strings.Join(args[2:], " "))
	if err != nil {
		return err
	}

	eventID, err := db.RecordEvent(dbCtx, r.DB, student.ID, cat.ID, satisfactory)
	if err != nil {
		return err
	}
	metrics.EventsRecorded.Inc()
	r.Log.Infow("event recorded", "event_id", eventID, "student", student.Name, "category", cat.Name, "satisfactory", satisfactory)
	r.printf("recorded event %d for %s (%s, %v)", eventID, student.Name, cat.Name, satisfactory)
	return nil
}

// redeem <yyyy-mm-dd|today> <name query>
func (r *REPL) cmdRedeem(ctx context.Context, args []string, sc *bufio.Scanner) error {
	if len(args) < 2 {
		return errors.New("usage: redeem <yyyy-mm-dd|today> <name>")
	}
	day, err := parseDay(args[0], r.Cfg.Location)
	if err != nil {
		return err
	}
	student, err := r.Index.Resolve(strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	events, err := db.EventsOn(dbCtx, r.DB, student.ID, day, r.Cfg.Location)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		r.printf("no events for %s on %s", student.Name, day.Format("2006-01-02"))
		return nil
	}

	for i, e := range events {
		r.printf("%d) %s\t%s\t%s", i+1, e.FirstEntered.In(r.Cfg.Location).Format("15:04:05"), e.CategoryName, okMiss(e.Satisfactory))
	}
	r.printf("edits (e.g. \"1=ok 3=miss\", empty line cancels):")
	if !sc.Scan() {
		return sc.Err()
	}
	editLine := strings.TrimSpace(sc.Text())
	if editLine == "" {
		r.printf("cancelled")
		return nil
	}

	edits := make(map[int64]bool)
	for _, tok := range strings.Fields(editLine) {
		idx, flag, err := parseEdit(tok, len(events))
		if err != nil {
			return err
		}
		edits[events[idx-1].ID] = flag
	}

	applyCtx, cancelApply := ctxutil.WithDBTimeout(ctx)
	defer cancelApply()
	if err := db.ApplyCorrections(applyCtx, r.DB, student.ID, day, r.Cfg.Location, edits); err != nil {
		return err
	}
	metrics.CorrectionBatches.Inc()
	r.Log.Infow("corrections applied", "student", student.Name, "day", day.Format("2006-01-02"), "edits", len(edits))
	r.printf("applied %d edit(s)", len(edits))
	return nil
}

func (r *REPL) cmdRefresh(ctx context.Context) error {
	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	t0 := time.Now()
	if err := db.RefreshSummary(dbCtx, r.DB, r.Policy); err != nil {
		return err
	}
	metrics.ObserveSummaryRefresh(time.Since(t0))
	r.printf("summary refreshed")
	return nil
}

func (r *REPL) cmdSummary(ctx context.Context) error {
	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := db.GetSummary(dbCtx, r.DB)
	if err != nil {
		return err
	}
	for _, row := range rows {
		stale := ""
		if row.Stale {
			stale = "\t(stale)"
		}
		r.printf("%d\t%s\t%d%s", row.StudentID, row.Name, row.Points, stale)
	}
	return nil
}

// export lms <path> | export xlsx <path>
func (r *REPL) cmdExport(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: export <lms|xlsx> <path>")
	}
	kind, path := args[0], args[1]

	if err := r.cmdRefresh(ctx); err != nil {
		return err
	}
	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	switch kind {
	case "lms":
		if len(r.Cfg.RoundCutoffs) == 0 {
			return errors.New("ROUND_CUTOFFS not configured")
		}
		rounds, err := db.RoundSummaries(dbCtx, r.DB, r.Cfg.RoundCutoffs)
		if err != nil {
			return err
		}
		fh, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := gate.WriteLMS(fh, rounds, r.Cfg.LMSColumnIDs); err != nil {
			_ = fh.Close()
			return err
		}
		if err := fh.Close(); err != nil {
			return err
		}
	case "xlsx":
		rows, err := db.GetSummary(dbCtx, r.DB)
		if err != nil {
			return err
		}
		sheets := []export.SheetSpec{export.SummarySheet(rows)}
		if len(r.Cfg.RoundCutoffs) > 0 {
			rounds, err := db.RoundSummaries(dbCtx, r.DB, r.Cfg.RoundCutoffs)
			if err != nil {
				return err
			}
			sheets = append(sheets, export.RoundsSheet(rounds))
		}
		wb, err := export.NewWorkbook(sheets)
		if err != nil {
			return err
		}
		if err := wb.SaveAs(path); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown export kind %q", kind)
	}
	r.Log.Infow("export written", "kind", kind, "path", path)
	r.printf("wrote %s", path)
	return nil
}

// roster <path> re-imports the roster and rebuilds the lookup index.
func (r *REPL) cmdRoster(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: roster <path>")
	}
	entries, err := gate.ReadRoster(args[0])
	if err != nil {
		return err
	}
	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	if err := db.UpsertRoster(dbCtx, r.DB, entries); err != nil {
		return err
	}
	students, err := db.ListEnrolled(dbCtx, r.DB)
	if err != nil {
		return err
	}
	r.Index.Rebuild(students)
	r.printf("roster updated: %d entries, %d enrolled", len(entries), len(students))
	return nil
}

func (r *REPL) cmdCategories(ctx context.Context) error {
	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	cats, err := db.ListCategories(dbCtx, r.DB)
	if err != nil {
		return err
	}
	for _, c := range cats {
		r.printf("%d\t%s", c.ID, c.Name)
	}
	return nil
}

func parseSatisfactory(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "ok", "yes", "true", "sat":
		return true, nil
	case "miss", "no", "false", "unsat":
		return false, nil
	}
	return false, fmt.Errorf("expected ok|miss, got %q", s)
}

func okMiss(satisfactory bool) string {
	if satisfactory {
		return "ok"
	}
	return "miss"
}

func parseDay(s string, loc *time.Location) (time.Time, error) {
	if strings.ToLower(s) == "today" {
		return time.Now().In(loc), nil
	}
	return time.ParseInLocation("2006-01-02", s, loc)
}

// parseEdit parses "N=ok" / "N=miss" with N in [1, max].
func parseEdit(tok string, max int) (int, bool, error) {
	idx, flagStr, found := strings.Cut(tok, "=")
	if !found {
		return 0, false, fmt.Errorf("bad edit %q", tok)
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 1 || n > max {
		return 0, false, fmt.Errorf("bad event number in %q", tok)
	}
	flag, err := parseSatisfactory(flagStr)
	if err != nil {
		return 0, false, err
	}
	return n, flag, nil
}
