package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/fraudguard/extract"
	"github.com/kbukum/fraudguard/fraud"
	"github.com/kbukum/fraudguard/logger"
	"github.com/kbukum/fraudguard/pipeline"
)

// Review commands, matched case-insensitively.
const (
	CommandApprove = "APPROVE"
	CommandDecline = "DECLINE"
	CommandAbort   = "ABORT"
	CommandHelp    = "HELP"
)

// QuerySource builds query ports for free-text questions. *agent.Suite
// satisfies this.
type QuerySource interface {
	QueryPort(question string) pipeline.Port
}

// Session drives one interactive review.
type Session struct {
	executor *pipeline.Executor
	queries  QuerySource
	opts     pipeline.Options
	in       io.Reader
	out      io.Writer
	log      *logger.Logger
}

// New creates a review session reading commands from in and writing to out.
func New(executor *pipeline.Executor, queries QuerySource, opts pipeline.Options, in io.Reader, out io.Writer) *Session {
	log := opts.Log
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Session{
		executor: executor,
		queries:  queries,
		opts:     opts,
		in:       in,
		out:      out,
		log:      log.WithComponent("session"),
	}
}

// Review screens the transaction, presents the result, and loops until the
// manager issues a verdict or input ends. Exhausted input counts as abort.
func (s *Session) Review(ctx context.Context, tx fraud.Transaction) (fraud.ReviewDecision, *fraud.OutcomeRecord, error) {
	sessionID := uuid.NewString()
	log := s.log.WithFields(map[string]interface{}{
		logger.FieldSessionID:   sessionID,
		logger.FieldTransaction: tx.TransactionID,
	})
	log.Info("review session started")

	record, err := s.executor.Screen(ctx, tx)
	if err != nil {
		return "", nil, err
	}
	s.renderSummary(record)

	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, "\nfraud-manager> ")
		if !scanner.Scan() {
			log.Info("input ended, aborting review")
			return fraud.ReviewAborted, record, scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToUpper(input) {
		case CommandApprove:
			log.Info("review settled", logger.Fields("verdict", string(fraud.ReviewApproved)))
			return fraud.ReviewApproved, record, nil
		case CommandDecline:
			log.Info("review settled", logger.Fields("verdict", string(fraud.ReviewDeclined)))
			return fraud.ReviewDeclined, record, nil
		case CommandAbort:
			log.Info("review aborted by manager")
			return fraud.ReviewAborted, record, nil
		case CommandHelp:
			s.renderHelp()
			continue
		}

		fmt.Fprintln(s.out, s.answer(ctx, tx, input))
	}
}

// answer runs a free-text question through a one-stage query pipeline.
func (s *Session) answer(ctx context.Context, tx fraud.Transaction, question string) string {
	port := s.queries.QueryPort(question)
	g := pipeline.SingleStage(pipeline.StageQuery, tx, port, s.opts)
	exec := pipeline.NewExecutionContext()

	engine := &pipeline.Engine{}
	if _, err := engine.Execute(ctx, g, exec, nil); err != nil {
		s.log.Error("query pipeline failed", logger.ErrorFields("query", err))
		return "The query could not be answered right now."
	}

	res, ok := exec.Get(pipeline.StageQuery)
	if !ok || res.RawText == "" {
		return "The query could not be answered right now."
	}
	return res.RawText
}

func (s *Session) renderSummary(record *fraud.OutcomeRecord) {
	fmt.Fprintln(s.out, "\n===== FRAUD SCREENING =====")
	fmt.Fprintf(s.out, "Transaction ID: %s\n", record.Transaction.TransactionID)
	fmt.Fprintf(s.out, "Amount: %.2f EUR\n", record.Transaction.Amount)
	fmt.Fprintf(s.out, "ML assessment: %.1f%% fraud probability\n",
		extract.Float(record.MLAssessment, "probability")*100)

	flagged := "unsuspicious"
	if extract.Bool(record.RuleAssessment, "is_flagged") {
		flagged = "suspicious"
	}
	fmt.Fprintf(s.out, "Rule assessment: %s\n", flagged)

	switch {
	case record.Err != "":
		fmt.Fprintf(s.out, "\nAutomated screening failed: %s\n", record.Err)
		fmt.Fprintln(s.out, "The transaction requires manual review.")
	case record.Explanation != "":
		fmt.Fprintln(s.out, "\nEXPLANATION:")
		fmt.Fprintln(s.out, record.Explanation)
	default:
		fmt.Fprintln(s.out, "\nNo explanation available.")
	}

	fmt.Fprintln(s.out, "\n-----------------------------------")
	fmt.Fprintln(s.out, "You can now ask questions about this transaction.")
	fmt.Fprintln(s.out, "Commands: APPROVE, DECLINE, ABORT, HELP")
	fmt.Fprintln(s.out, "-----------------------------------")
}

func (s *Session) renderHelp() {
	fmt.Fprintln(s.out, "\nAvailable commands:")
	fmt.Fprintln(s.out, "- Ask free-text questions about the transaction")
	fmt.Fprintln(s.out, "- APPROVE: release the transaction")
	fmt.Fprintln(s.out, "- DECLINE: reject the transaction")
	fmt.Fprintln(s.out, "- ABORT: end the review without a verdict")
}
