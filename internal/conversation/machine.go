// Package conversation implements the guided contribution form as a
// per-user state machine. It knows nothing about the transport: events go
// in, prompts with optional choices come out.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"contribot/internal/core"
)

// ErrDownload marks a failed proof download. The session stays in
// awaiting_proof.
var ErrDownload = errors.New("download proof")

// Recorder persists completed records.
type Recorder interface {
	Insert(ctx context.Context, c core.Contribution) (core.Contribution, error)
	InsertAll(ctx context.Context, cs []core.Contribution) ([]core.Contribution, error)
}

// ProofSaver validates and stores a proof image, returning its location.
type ProofSaver interface {
	Save(ctx context.Context, userID int64, month core.Month, data []byte) (string, error)
}

type Config struct {
	BotName string
	Years   []int
	Logger  *slog.Logger
}

type sessionIdentity struct {
	userID      int64
	displayName string
}

type session struct {
	mu       sync.Mutex
	identity sessionIdentity
	state    State
	draft    *Draft
}

type Machine struct {
	recorder Recorder
	proofs   ProofSaver
	botName  string
	years    []int
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[int64]*session
}

func New(recorder Recorder, proofs ProofSaver, cfg Config) *Machine {
	years := cfg.Years
	if len(years) == 0 {
		years = core.DefaultYears
	}
	botName := cfg.BotName
	if botName == "" {
		botName = "Contribution Bot"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		recorder: recorder,
		proofs:   proofs,
		botName:  botName,
		years:    append([]int(nil), years...),
		logger:   logger,
		sessions: make(map[int64]*session),
	}
}

// State returns the current state of a user's session.
func (m *Machine) State(userID int64) State {
	s, ok := m.lookup(userID)
	if !ok {
		return StateIdle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft returns a copy of the user's unfinished draft, if any.
func (m *Machine) Draft(userID int64) (Draft, bool) {
	s, ok := m.lookup(userID)
	if !ok {
		return Draft{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return Draft{}, false
	}
	return s.draft.clone(), true
}

func (m *Machine) lookup(userID int64) (*session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// acquire returns the user's live session, locked. Idle sessions are
// dropped from the map by release, so a session found detached after
// locking is skipped.
func (m *Machine) acquire(userID int64) *session {
	for {
		m.mu.Lock()
		s, ok := m.sessions[userID]
		if !ok {
			s = &session{identity: sessionIdentity{userID: userID}, state: StateIdle}
			m.sessions[userID] = s
		}
		m.mu.Unlock()

		s.mu.Lock()
		if current, _ := m.lookup(userID); current == s {
			return s
		}
		s.mu.Unlock()
	}
}

// release unlocks s, first removing it from the map when it holds no draft.
func (m *Machine) release(s *session) {
	if s.state == StateIdle {
		m.mu.Lock()
		if m.sessions[s.identity.userID] == s {
			delete(m.sessions, s.identity.userID)
		}
		m.mu.Unlock()
	}
	s.mu.Unlock()
}

// Handle processes one event to completion. Events of the same user are
// serialized; different users proceed independently.
func (m *Machine) Handle(ctx context.Context, ev Event) Reply {
	s := m.acquire(ev.Identity.UserID)
	defer m.release(s)

	before := s.state
	reply := m.dispatch(ctx, s, ev)
	if reply.Err != nil {
		m.logger.DebugContext(ctx, "Conversation input rejected",
			"user_id", ev.Identity.UserID,
			"state", before,
			"event", ev.Kind.String(),
			"error", reply.Err)
	} else if before != s.state {
		m.logger.DebugContext(ctx, "Conversation advanced",
			"user_id", ev.Identity.UserID,
			"from", before,
			"to", s.state)
	}
	return reply
}

func (m *Machine) dispatch(ctx context.Context, s *session, ev Event) Reply {
	switch ev.Kind {
	case EventStart:
		return m.start(s, ev.Identity)
	case EventCancel:
		return m.cancel(s)
	}

	switch s.state {
	case StateAwaitingYear:
		if ev.Kind == EventSelect {
			return m.selectYear(s, ev.Token)
		}
	case StateAwaitingMonth:
		if ev.Kind == EventSelect {
			return m.selectMonth(s, ev.Token)
		}
	case StateAwaitingCategory:
		if ev.Kind == EventSelect {
			return m.selectCategory(s, ev.Token)
		}
	case StateAwaitingMemberName:
		if ev.Kind == EventText {
			return m.memberName(s, ev.Text)
		}
	case StateAwaitingAmount:
		if ev.Kind == EventText {
			return m.amount(s, ev.Text)
		}
	case StateAwaitingProof:
		switch ev.Kind {
		case EventPhoto:
			return m.proof(ctx, s, ev.Fetch)
		case EventText, EventAttachment:
			return Reply{
				Messages: []Message{{Text: textNeedPhoto}},
				Err:      &core.ValidationError{Field: "proof", Reason: "must be a photo"},
			}
		}
	case StateAwaitingContinue:
		if ev.Kind == EventSelect {
			return m.decide(ctx, s, ev.Token)
		}
	}
	// Inputs not routed to the current state have no effect.
	return Reply{}
}

func (m *Machine) start(s *session, id core.Identity) Reply {
	s.identity = sessionIdentity{userID: id.UserID, displayName: id.DisplayName}
	s.draft = &Draft{}
	s.state = StateAwaitingYear
	return Reply{Messages: []Message{m.yearMessage(greeting(id.DisplayName, m.botName))}}
}

func (m *Machine) cancel(s *session) Reply {
	if s.state == StateIdle {
		return say(textNothingToCancel)
	}
	m.reset(s)
	return say(textCancelled)
}

func (m *Machine) reset(s *session) {
	s.draft = nil
	s.state = StateIdle
}

func invalidChoice(msg Message, token string) Reply {
	msg.Text = textInvalidChoice
	return Reply{
		Messages: []Message{msg},
		Err:      &core.ValidationError{Field: "selection", Reason: fmt.Sprintf("unexpected option %q", token)},
	}
}

func (m *Machine) selectYear(s *session, token string) Reply {
	value, ok := strings.CutPrefix(token, yearPrefix)
	year, err := strconv.Atoi(value)
	if !ok || err != nil || !m.offersYear(year) {
		return invalidChoice(m.yearMessage(""), token)
	}
	s.draft.Year = year
	s.state = StateAwaitingMonth
	return Reply{Messages: []Message{
		monthMessage(fmt.Sprintf("Great! You selected %d. Now please select the month:", year)),
	}}
}

func (m *Machine) offersYear(year int) bool {
	for _, y := range m.years {
		if y == year {
			return true
		}
	}
	return false
}

func (m *Machine) selectMonth(s *session, token string) Reply {
	value, ok := strings.CutPrefix(token, monthPrefix)
	month := core.Month(value)
	if !ok || !month.Valid() {
		return invalidChoice(monthMessage(""), token)
	}
	s.draft.Month = month
	s.state = StateAwaitingCategory
	return Reply{Messages: []Message{
		categoryMessage(fmt.Sprintf("Perfect! You selected %s. Now please select the contribution type:", month)),
	}}
}

func (m *Machine) selectCategory(s *session, token string) Reply {
	value, ok := strings.CutPrefix(token, categoryPrefix)
	category := core.Category(value)
	if !ok || !category.Valid() {
		return invalidChoice(categoryMessage(""), token)
	}
	s.draft.Category = category
	if category == core.CategorySelf {
		s.state = StateAwaitingAmount
		return say("You selected Self contribution. Please enter the amount:")
	}
	s.state = StateAwaitingMemberName
	return say("You selected Family Members contribution. Please enter the first family member's name:")
}

func (m *Machine) memberName(s *session, text string) Reply {
	name := strings.TrimSpace(text)
	if name == "" {
		return Reply{
			Messages: []Message{{Text: textEmptyMember}},
			Err:      &core.ValidationError{Field: "member_name", Reason: "must not be empty"},
		}
	}
	if s.draft.hasMember(name) {
		return Reply{
			Messages: []Message{{Text: fmt.Sprintf("%s was already added to this submission. Please enter a different family member's name:", name)}},
			Err:      &core.ValidationError{Field: "member_name", Reason: "already added"},
		}
	}
	s.draft.MemberName = name
	s.state = StateAwaitingAmount
	return say(fmt.Sprintf("Thanks! You entered %s. Now please enter the amount for this family member:", name))
}

func (m *Machine) amount(s *session, text string) Reply {
	amount, err := core.ParseAmount(text)
	if err != nil {
		return Reply{Messages: []Message{{Text: textInvalidAmount}}, Err: err}
	}
	s.draft.Amount = amount
	s.state = StateAwaitingProof
	if s.draft.Category == core.CategoryFamily {
		return say(fmt.Sprintf("Amount %s recorded for %s. Please upload the screenshot for this family member:", amount, s.draft.MemberName))
	}
	return say("Amount recorded. Please upload the screenshot of your contribution:")
}

func (m *Machine) proof(ctx context.Context, s *session, fetch FetchFunc) Reply {
	if s.draft.ProofPath == "" {
		if fetch == nil {
			return Reply{
				Messages: []Message{{Text: textNeedPhoto}},
				Err:      &core.ValidationError{Field: "proof", Reason: "missing photo"},
			}
		}
		data, err := fetch(ctx)
		if err != nil {
			m.logger.WarnContext(ctx, "Failed to download proof", "user_id", s.identity.userID, "error", err)
			return Reply{Messages: []Message{{Text: textDownloadFailed}}, Err: fmt.Errorf("%w: %w", ErrDownload, err)}
		}

		path, err := m.proofs.Save(ctx, s.identity.userID, s.draft.Month, data)
		if err != nil {
			if core.IsValidation(err) {
				return Reply{Messages: []Message{{Text: textNeedPhoto}}, Err: err}
			}
			return m.saveFailed(ctx, s, err)
		}
		s.draft.ProofPath = path
	}

	entry := Entry{Member: s.draft.MemberName, Amount: s.draft.Amount, ProofPath: s.draft.ProofPath}

	if s.draft.Category == core.CategorySelf {
		stored, err := m.recorder.Insert(ctx, s.draft.record(s.identity, entry))
		if err != nil {
			return m.saveFailed(ctx, s, err)
		}
		m.reset(s)
		reply := say(selfSummary(stored))
		reply.Stored = 1
		return reply
	}

	s.draft.Entries = append(s.draft.Entries, entry)
	s.draft.clearScratch()
	s.state = StateAwaitingContinue
	return Reply{Messages: []Message{
		{Text: fmt.Sprintf("✅ Screenshot saved for %s.", entry.Member)},
		moreMessage(textAddAnother),
	}}
}

func (m *Machine) decide(ctx context.Context, s *session, token string) Reply {
	switch token {
	case TokenMoreYes:
		s.draft.clearScratch()
		s.state = StateAwaitingMemberName
		return say(textNextMember)
	case TokenMoreNo:
		records := make([]core.Contribution, 0, len(s.draft.Entries))
		for _, e := range s.draft.Entries {
			records = append(records, s.draft.record(s.identity, e))
		}
		stored, err := m.recorder.InsertAll(ctx, records)
		if err != nil {
			return m.saveFailed(ctx, s, err)
		}
		m.reset(s)
		reply := say(familySummary(stored))
		reply.Stored = len(stored)
		return reply
	default:
		return invalidChoice(moreMessage(""), token)
	}
}

// saveFailed keeps the draft and state so the user can retry.
func (m *Machine) saveFailed(ctx context.Context, s *session, err error) Reply {
	if !errors.Is(err, core.ErrStorageFault) {
		err = core.StorageFault("persist draft", err)
	}
	m.logger.ErrorContext(ctx, "Failed to persist contribution",
		"user_id", s.identity.userID,
		"state", s.state,
		"error", err)
	return Reply{Messages: []Message{{Text: textSaveFailed}}, Err: err}
}
