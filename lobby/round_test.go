package lobby

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wfunc/tugofwar/network"
)

func TestRound_BlueWinsAtLimit(t *testing.T) {
	env := newTestEnv(t)
	code := env.startGame(t)

	for i := 1; i <= 4; i++ {
		p, err := env.store.SubmitAnswer(code, "conn-b", []byte("12"))
		if err != nil {
			t.Fatalf("Answer %d rejected: %v", i, err)
		}
		if p.Score != i {
			t.Errorf("Expected score %d, got %d", i, p.Score)
		}
		tug, _ := env.notifier.lastFor("conn-a", network.EventTugUpdate)
		if tug.Payload != 10*i {
			t.Errorf("Expected tug %d, got %v", 10*i, tug.Payload)
		}
	}
	env.notifier.clear()

	if _, err := env.store.SubmitAnswer(code, "conn-b", []byte("12")); err != nil {
		t.Fatalf("Winning answer rejected: %v", err)
	}

	want := []string{
		network.EventMessage,
		network.EventTugUpdate,
		network.EventScoreUpdate,
		network.EventGameOver,
		network.EventGameReset,
	}
	if got := env.notifier.namesFor("conn-a"); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	over, _ := env.notifier.lastFor("conn-a", network.EventGameOver)
	if over.Payload != "Tim BIRU (B) menang!" {
		t.Errorf("Unexpected game over notice: %v", over.Payload)
	}
	msg, _ := env.notifier.lastFor("conn-a", network.EventMessage)
	if msg.Payload != "B (Tim blue) BENAR!" {
		t.Errorf("Unexpected correct notice: %v", msg.Payload)
	}

	l, _ := env.store.Get(code)
	if l.Phase() != PhaseWaiting {
		t.Errorf("Expected phase %s after win, got %s", PhaseWaiting, l.Phase())
	}
	if _, err := env.store.SubmitAnswer(code, "conn-a", []byte("12")); !errors.Is(err, ErrGameNotStarted) {
		t.Errorf("Expected ErrGameNotStarted after win, got %v", err)
	}
	if env.clock.Len() != 0 {
		t.Errorf("Expected no pending timers after win, got %d", env.clock.Len())
	}

	if len(env.recorder.records) != 1 {
		t.Fatalf("Expected 1 match record, got %d", len(env.recorder.records))
	}
	record := env.recorder.records[0]
	if record.Winner != "blue" || record.WinnerName != "B" || record.FinalTug != 50 || record.RoomCode != code {
		t.Errorf("Unexpected record: %+v", record)
	}
	if len(record.Players) != 2 || record.Players[0].Name != "A" || record.Players[1].Score != 5 {
		t.Errorf("Unexpected record players: %+v", record.Players)
	}
}

func TestRound_RedWinsAtNegativeLimit(t *testing.T) {
	env := newTestEnv(t)
	code := env.startGame(t)

	for i := 0; i < 5; i++ {
		if _, err := env.store.SubmitAnswer(code, "conn-a", []byte(`"12"`)); err != nil {
			t.Fatalf("Answer rejected: %v", err)
		}
	}

	over, ok := env.notifier.lastFor("conn-b", network.EventGameOver)
	if !ok || over.Payload != "Tim MERAH (A) menang!" {
		t.Errorf("Unexpected game over: %+v", over)
	}
	if env.recorder.records[0].FinalTug != -50 {
		t.Errorf("Expected final tug -50, got %d", env.recorder.records[0].FinalTug)
	}
}

func TestRound_TugNeverPassesLimit(t *testing.T) {
	env := newTestEnv(t)
	code := env.startGame(t)
	answers := []string{"conn-a", "conn-b", "conn-b", "conn-a", "conn-b", "conn-b", "conn-b", "conn-b", "conn-b"}

	for _, conn := range answers {
		env.store.SubmitAnswer(code, conn, []byte("12"))
		l, _ := env.store.Get(code)
		l.mutex.Lock()
		tug := l.tugPosition
		l.mutex.Unlock()
		if tug < -50 || tug > 50 {
			t.Fatalf("Tug escaped its bounds: %d", tug)
		}
	}
	if len(env.recorder.records) != 1 {
		t.Errorf("Expected exactly one finished game, got %d", len(env.recorder.records))
	}
}

func TestRound_WrongAnswerChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	code := env.startGame(t)
	env.notifier.clear()

	for _, raw := range []string{"13", `"abc"`, `null`, `""`} {
		p, err := env.store.SubmitAnswer(code, "conn-a", []byte(raw))
		if !errors.Is(err, ErrAnswerIncorrect) {
			t.Errorf("Answer %s: expected ErrAnswerIncorrect, got %v", raw, err)
		}
		if p.Score != 0 {
			t.Errorf("Wrong answer changed the score to %d", p.Score)
		}
	}
	if events := env.notifier.eventsFor("conn-b"); len(events) != 0 {
		t.Errorf("Wrong answers must not be broadcast, got %v", events)
	}
	if env.questions.Calls() != 1 {
		t.Errorf("Wrong answers must not advance the question")
	}
}

func TestRound_LateAnswerRejected(t *testing.T) {
	env := newTestEnv(t)
	code := env.startGame(t)

	l, _ := env.store.Get(code)
	l.mutex.Lock()
	l.currentQuestion.Team = TeamBlue
	l.mutex.Unlock()

	p, err := env.store.SubmitAnswer(code, "conn-a", []byte("12"))
	if !errors.Is(err, ErrAnswerWindowClosed) {
		t.Fatalf("Expected ErrAnswerWindowClosed, got %v", err)
	}
	if p.Score != 0 {
		t.Errorf("Late answer scored")
	}
}

func TestRound_SubmitOutsideGame(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.store.SubmitAnswer("0000", "conn-a", []byte("1")); !errors.Is(err, ErrGameNotStarted) {
		t.Errorf("Expected ErrGameNotStarted for missing lobby, got %v", err)
	}

	code, _, _ := env.store.Create("conn-a", "A")
	if _, err := env.store.SubmitAnswer(code, "conn-a", []byte("1")); !errors.Is(err, ErrGameNotStarted) {
		t.Errorf("Expected ErrGameNotStarted while waiting, got %v", err)
	}

	env.store.Join(code, "conn-b", "B")
	if _, err := env.store.SubmitAnswer(code, "conn-a", []byte("1")); !errors.Is(err, ErrGameNotStarted) {
		t.Errorf("Expected ErrGameNotStarted during countdown, got %v", err)
	}

	env.clock.Advance(3 * time.Second)
	if _, err := env.store.SubmitAnswer(code, "conn-z", []byte("12")); !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("Expected ErrUnknownPlayer, got %v", err)
	}
}

func TestRound_TimeoutIssuesNextQuestion(t *testing.T) {
	env := newTestEnv(t)
	env.startGame(t)
	env.notifier.clear()

	env.clock.Advance(10 * time.Second)

	want := []string{network.EventMessage, network.EventTugUpdate, network.EventNewQuestion}
	if got := env.notifier.namesFor("conn-a"); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	msg, _ := env.notifier.lastFor("conn-a", network.EventMessage)
	if msg.Payload != "Waktu habis! Soal berikutnya..." {
		t.Errorf("Unexpected timeout notice: %v", msg.Payload)
	}
	if env.questions.Calls() != 2 {
		t.Errorf("Expected 2 questions, got %d", env.questions.Calls())
	}

	env.clock.Advance(30 * time.Second)
	if env.questions.Calls() != 5 {
		t.Errorf("Expected timeouts to repeat, got %d questions", env.questions.Calls())
	}
	if env.clock.Len() != 1 {
		t.Errorf("Expected exactly one armed question timer, got %d", env.clock.Len())
	}
}

func TestRound_CorrectAnswerRestartsTimer(t *testing.T) {
	env := newTestEnv(t)
	code := env.startGame(t)

	env.clock.Advance(9 * time.Second)
	env.store.SubmitAnswer(code, "conn-b", []byte("12"))
	env.notifier.clear()

	env.clock.Advance(2 * time.Second)
	if _, ok := env.notifier.lastFor("conn-a", network.EventMessage); ok {
		t.Error("Previous question's timeout fired after a correct answer")
	}

	env.clock.Advance(8 * time.Second)
	msg, ok := env.notifier.lastFor("conn-a", network.EventMessage)
	if !ok || msg.Payload != "Waktu habis! Soal berikutnya..." {
		t.Errorf("Expected the new question to time out, got %+v", msg)
	}
}

func TestRound_StaleTimerIgnored(t *testing.T) {
	env := newTestEnv(t)
	code := env.startGame(t)

	l, _ := env.store.Get(code)
	l.mutex.Lock()
	staleQuestion, staleStart := l.questionSeq-1, l.startSeq-1
	l.mutex.Unlock()

	calls := env.questions.Calls()
	l.onQuestionTimeout(staleQuestion)
	l.onStartDelay(staleStart)
	if env.questions.Calls() != calls {
		t.Error("Stale timer callback issued a question")
	}
}

func TestParseAnswer(t *testing.T) {
	cases := []struct {
		raw   string
		value int
		valid bool
	}{
		{`12`, 12, true},
		{`12.9`, 12, true},
		{`-3.5`, -3, true},
		{`"12"`, 12, true},
		{`"  42abc"`, 42, true},
		{`"+7"`, 7, true},
		{`"-7"`, -7, true},
		{`"0x1A"`, 26, true},
		{`"abc"`, 0, false},
		{`""`, 0, false},
		{`"-"`, 0, false},
		{`null`, 0, false},
		{`true`, 0, false},
		{`{}`, 0, false},
		{``, 0, false},
		{`1e12`, 0, false},
	}
	for _, c := range cases {
		got := ParseAnswer([]byte(c.raw))
		if got.Valid != c.valid || (c.valid && got.Value != c.value) {
			t.Errorf("ParseAnswer(%s) = %+v; want %d valid=%v", c.raw, got, c.value, c.valid)
		}
	}
}
