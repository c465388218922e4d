// Package question generates the arithmetic prompts players race to answer.
package question

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

type Operator string

const (
	Add      Operator = "+"
	Subtract Operator = "-"
	Multiply Operator = "×"
	Divide   Operator = "÷"
)

var operators = []Operator{Add, Subtract, Multiply, Divide}

// Question is one prompt. Left and Right are the operands as shown in Text.
type Question struct {
	Text     string
	Answer   int
	Operator Operator
	Left     int
	Right    int
}

// Check recomputes the operator on the operands and reports whether it
// reproduces Answer exactly. Division must leave no remainder.
func (q Question) Check() bool {
	switch q.Operator {
	case Add:
		return q.Left+q.Right == q.Answer
	case Subtract:
		return q.Left-q.Right == q.Answer
	case Multiply:
		return q.Left*q.Right == q.Answer
	case Divide:
		return q.Right != 0 && q.Left%q.Right == 0 && q.Left/q.Right == q.Answer
	}
	return false
}

// Generator is safe for concurrent use by every lobby.
type Generator struct {
	mutex sync.Mutex
	rnd   *rand.Rand
}

func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Generator{rnd: rand.New(src)}
}

// between returns a uniform integer in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rnd.Intn(hi-lo+1)
}

func (g *Generator) Generate() Question {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	q := Question{Operator: operators[g.rnd.Intn(len(operators))]}
	switch q.Operator {
	case Add:
		q.Left, q.Right = g.between(1, 20), g.between(1, 20)
		q.Answer = q.Left + q.Right
	case Subtract:
		q.Left = g.between(5, 29)
		q.Right = g.between(1, q.Left)
		q.Answer = q.Left - q.Right
	case Multiply:
		q.Left, q.Right = g.between(2, 11), g.between(2, 11)
		q.Answer = q.Left * q.Right
	case Divide:
		q.Answer = g.between(2, 11)
		q.Right = g.between(2, 11)
		q.Left = q.Answer * q.Right
	}
	q.Text = fmt.Sprintf("%d %s %d", q.Left, q.Operator, q.Right)
	return q
}
