package cmdline

import "strings"

// Option is a single key[=value] entry of the cmdline. Value is nil when the
// entry had no '=' at all, and points to "" for "key=".
type Option struct {
	Key   string
	Value *string
}

type tokenState int

const (
	readingKey tokenState = iota
	readingValue
	quotedKey
	quotedValue
)

type charClass int

const (
	classOther charClass = iota
	classEquals
	classQuote
	classSeparator
)

type action int

const (
	appendChar action = iota
	skipChar
	// startValue drops the '=' and marks that a value exists, even an empty one.
	startValue
	emitOption
)

type transition struct {
	next tokenState
	do   action
}

// Only the first '=' of an option starts the value; any later one is part of it,
// which keeps rootflags=trans=virtio intact. Separators only count outside quotes.
var transitions = [4][4]transition{
	readingKey: {
		classOther:     {readingKey, appendChar},
		classEquals:    {readingValue, startValue},
		classQuote:     {quotedKey, skipChar},
		classSeparator: {readingKey, emitOption},
	},
	readingValue: {
		classOther:     {readingValue, appendChar},
		classEquals:    {readingValue, appendChar},
		classQuote:     {quotedValue, skipChar},
		classSeparator: {readingKey, emitOption},
	},
	quotedKey: {
		classOther:     {quotedKey, appendChar},
		classEquals:    {quotedValue, startValue},
		classQuote:     {readingKey, skipChar},
		classSeparator: {quotedKey, appendChar},
	},
	quotedValue: {
		classOther:     {quotedValue, appendChar},
		classEquals:    {quotedValue, appendChar},
		classQuote:     {readingValue, skipChar},
		classSeparator: {quotedValue, appendChar},
	},
}

func classify(b byte) charClass {
	switch b {
	case '=':
		return classEquals
	case '"':
		return classQuote
	case ' ', '\n':
		return classSeparator
	default:
		return classOther
	}
}

type tokenizer struct {
	state     tokenState
	key       strings.Builder
	value     strings.Builder
	haveValue bool
}

func (t *tokenizer) inValue() bool {
	return t.state == readingValue || t.state == quotedValue
}

// flush hands the pending option to yield, if there is one, and resets the buffers.
func (t *tokenizer) flush(yield func(Option) error) error {
	defer func() {
		t.key.Reset()
		t.value.Reset()
		t.haveValue = false
	}()
	if t.key.Len() == 0 {
		return nil
	}
	opt := Option{Key: t.key.String()}
	if t.haveValue {
		opt.Value = ptr(t.value.String())
	}
	return yield(opt)
}

// Tokenize splits the cmdline into options and passes them to yield in the
// order they appear. It stops at the first error yield returns.
//
// An unterminated quote is not an error: whatever was collected is flushed as
// the last option.
func Tokenize(cmdline string, yield func(Option) error) error {
	t := &tokenizer{state: readingKey}
	// Bytes, not runes: every special character is ASCII and values such
	// as init= must come out byte for byte, valid UTF-8 or not.
	for i := 0; i < len(cmdline); i++ {
		b := cmdline[i]
		tr := transitions[t.state][classify(b)]
		switch tr.do {
		case appendChar:
			if t.inValue() {
				t.value.WriteByte(b)
			} else {
				t.key.WriteByte(b)
			}
		case startValue:
			t.haveValue = true
		case emitOption:
			if err := t.flush(yield); err != nil {
				return err
			}
		}
		t.state = tr.next
	}
	return t.flush(yield)
}

// Options returns every option of the cmdline in order.
func Options(cmdline string) []Option {
	var opts []Option
	_ = Tokenize(cmdline, func(o Option) error {
		opts = append(opts, o)
		return nil
	})
	return opts
}
