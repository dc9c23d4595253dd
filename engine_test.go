package parse

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type weekday int

const (
	monday weekday = iota + 1
	tuesday
	wednesday
)

func newWeekdayEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(EngineOpts{})
	require.NoError(t, RegisterEnumFor(e, map[string]weekday{
		"Monday":    monday,
		"Tuesday":   tuesday,
		"Wednesday": wednesday,
	}))
	return e
}

func TestParseEnum(t *testing.T) {
	e := newWeekdayEngine(t)

	t.Run("CaseInsensitiveMatch", func(t *testing.T) {
		for _, text := range []string{"monday", "MONDAY", "Monday", "mOnDaY"} {
			value, err := e.ParseType(text, reflect.TypeOf(weekday(0)))
			require.NoError(t, err, text)
			assert.Equal(t, monday, value, text)
		}
	})

	t.Run("NotAMember", func(t *testing.T) {
		_, err := e.ParseType("Funday", reflect.TypeOf(weekday(0)))
		assert.ErrorIs(t, err, ErrParseFormat)
	})

	t.Run("NoOtherStrategyParticipates", func(t *testing.T) {
		// weekday's int kind would happily parse "2", but the enum
		// category only matches member names.
		_, err := e.ParseType("2", reflect.TypeOf(weekday(0)))
		assert.ErrorIs(t, err, ErrParseFormat)
	})
}

func TestParseNullable(t *testing.T) {
	e := NewEngine(EngineOpts{})

	t.Run("Present", func(t *testing.T) {
		value, err := ParseAs[*int](e, "5")
		require.NoError(t, err)
		require.NotNil(t, value)
		assert.Equal(t, 5, *value)
	})

	t.Run("InnerFailurePropagates", func(t *testing.T) {
		_, err := ParseAs[*int](e, "abc")
		assert.ErrorIs(t, err, ErrParseFormat)
	})

	t.Run("EmptyIsAbsent", func(t *testing.T) {
		value, err := ParseAs[*int](e, "")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("NullableOfEnum", func(t *testing.T) {
		we := newWeekdayEngine(t)
		value, err := ParseAs[*weekday](we, "tuesday")
		require.NoError(t, err)
		require.NotNil(t, value)
		assert.Equal(t, tuesday, *value)
	})
}

func TestParseRoundTrip(t *testing.T) {
	e := NewEngine(EngineOpts{})

	for _, n := range []int64{0, 1, -1, 42, -99999, 1<<62 - 1, -(1 << 62)} {
		value, err := e.ParseType(strconv.FormatInt(n, 10), reflect.TypeOf(int64(0)))
		require.NoError(t, err)
		assert.Equal(t, n, value)
	}
}

func TestProviderOrder(t *testing.T) {
	e := NewEngine(EngineOpts{})
	dot := DotDecimalProvider()
	comma := CommaDecimalProvider()

	t.Run("FirstRejectsSecondAccepts", func(t *testing.T) {
		// The dot convention rejects "3,14" (bad digit grouping); the
		// comma convention reads it as 3.14.
		value, err := ParseAs[float64](e, "3,14", dot, comma)
		require.NoError(t, err)
		assert.Equal(t, 3.14, value)
	})

	t.Run("FirstMatchWins", func(t *testing.T) {
		// "1,234" is valid under both conventions with different
		// meanings; the caller-given order decides.
		value, err := ParseAs[float64](e, "1,234", dot, comma)
		require.NoError(t, err)
		assert.Equal(t, float64(1234), value)

		value, err = ParseAs[float64](e, "1,234", comma, dot)
		require.NoError(t, err)
		assert.Equal(t, 1.234, value)
	})

	t.Run("SuccessShortCircuits", func(t *testing.T) {
		type temperature float64
		local := NewEngine(EngineOpts{})

		var consulted []string
		err := local.Registry().RegisterTryParse(reflect.TypeOf(temperature(0)),
			func(text string, provider *FormatProvider) (any, bool) {
				consulted = append(consulted, provider.Name)
				f, err := strconv.ParseFloat(text, 64)
				return temperature(f), err == nil
			})
		require.NoError(t, err)

		_, err = local.ParseType("21.5", reflect.TypeOf(temperature(0)), comma, dot)
		require.NoError(t, err)
		assert.Equal(t, []string{CommaDecimalProviderName}, consulted)
	})
}

func TestParseStrategySuppression(t *testing.T) {
	// A parse strategy failure is swallowed and the next provider is
	// tried; only exhausting every provider fails the call.
	type ticket struct{ id string }
	typ := reflect.TypeOf(ticket{})

	e := NewEngine(EngineOpts{})
	var attempts []string
	err := e.Registry().RegisterParse(typ, func(text string, provider *FormatProvider) (any, error) {
		attempts = append(attempts, provider.Name)
		if provider.Name != CommaDecimalProviderName {
			return nil, fmt.Errorf("provider %s cannot read %q", provider.Name, text)
		}
		return ticket{id: text}, nil
	})
	require.NoError(t, err)

	value, err := e.ParseType("T-1", typ, DotDecimalProvider(), CommaDecimalProvider())
	require.NoError(t, err)
	assert.Equal(t, ticket{id: "T-1"}, value)
	assert.Equal(t, []string{DotDecimalProviderName, CommaDecimalProviderName}, attempts)

	attempts = nil
	_, err = e.ParseType("T-2", typ, DotDecimalProvider())
	assert.ErrorIs(t, err, ErrParseFormat)
	assert.Equal(t, []string{DotDecimalProviderName}, attempts)
}

func TestConstructorStrategy(t *testing.T) {
	e := NewEngine(EngineOpts{})

	t.Run("Success", func(t *testing.T) {
		id := "c9a33bd5-4a9a-4e2e-9c5b-7e4edcb1a2f3"
		value, err := ParseAs[uuid.UUID](e, id)
		require.NoError(t, err)
		assert.Equal(t, id, value.String())
	})

	t.Run("FailurePropagates", func(t *testing.T) {
		_, err := ParseAs[uuid.UUID](e, "not-a-uuid")
		assert.ErrorIs(t, err, ErrConstructor)
	})

	t.Run("InvokedOncePastProviders", func(t *testing.T) {
		// The constructor runs a single time regardless of how many
		// providers were supplied.
		type token struct{ raw string }
		typ := reflect.TypeOf(token{})

		local := NewEngine(EngineOpts{})
		calls := 0
		err := local.Registry().RegisterConstructor(typ, func(text string) (any, error) {
			calls++
			return nil, fmt.Errorf("bad token %q", text)
		})
		require.NoError(t, err)

		_, err = local.ParseType("x", typ, DotDecimalProvider(), CommaDecimalProvider(), DefaultProvider())
		assert.ErrorIs(t, err, ErrConstructor)
		assert.Equal(t, 1, calls)
	})

	t.Run("NotReachedWhenTryParseSucceeds", func(t *testing.T) {
		type code int
		typ := reflect.TypeOf(code(0))

		local := NewEngine(EngineOpts{})
		err := local.Registry().RegisterConstructor(typ, func(text string) (any, error) {
			t.Error("constructor should not run when try-parse succeeds")
			return nil, nil
		})
		require.NoError(t, err)

		value, err := local.ParseType("7", typ)
		require.NoError(t, err)
		assert.Equal(t, code(7), value)
	})
}

func TestParseOrDefault(t *testing.T) {
	e := NewEngine(EngineOpts{})

	t.Run("SubstitutesAbsent", func(t *testing.T) {
		value, err := ParseOrDefaultAs(e, "", 42)
		require.NoError(t, err)
		assert.Equal(t, 42, value)
	})

	t.Run("KeepsParsedValue", func(t *testing.T) {
		value, err := ParseOrDefaultAs(e, "7", 42)
		require.NoError(t, err)
		assert.Equal(t, 7, value)
	})

	t.Run("DoesNotSwallowErrors", func(t *testing.T) {
		_, err := ParseOrDefaultAs(e, "abc", 42)
		assert.ErrorIs(t, err, ErrParseFormat)
	})

	t.Run("NullableAbsent", func(t *testing.T) {
		def := 9
		value, err := ParseOrDefaultAs(e, "", &def)
		require.NoError(t, err)
		require.NotNil(t, value)
		assert.Equal(t, 9, *value)
	})

	t.Run("ReflectVariant", func(t *testing.T) {
		value, err := e.ParseTypeOrDefault("", reflect.TypeOf(0), 42)
		require.NoError(t, err)
		assert.Equal(t, 42, value)
	})
}

func TestCanParse(t *testing.T) {
	e := newWeekdayEngine(t)

	assert.True(t, e.CanParse(reflect.TypeOf(0)))
	assert.True(t, e.CanParse(reflect.TypeOf("")))
	assert.True(t, e.CanParse(reflect.TypeOf(weekday(0))))
	assert.True(t, e.CanParse(reflect.TypeOf((*int)(nil))))
	assert.True(t, e.CanParse(UUIDType))
	assert.True(t, e.CanParse(TimeType))

	assert.False(t, e.CanParse(nil))
	assert.False(t, e.CanParse(reflect.TypeOf(opaque{})))
	assert.False(t, e.CanParse(reflect.TypeOf(func() {})))
}

func TestUnsupportedType(t *testing.T) {
	e := NewEngine(EngineOpts{})

	_, err := e.ParseType("anything", reflect.TypeOf(func() {}))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = e.ParseType("anything", reflect.TypeOf(opaque{}))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = e.ParseType("x", nil)
	assert.ErrorIs(t, err, ErrNilTargetType)
}

func TestBuiltinStrategies(t *testing.T) {
	e := NewEngine(EngineOpts{})

	t.Run("Bool", func(t *testing.T) {
		value, err := ParseAs[bool](e, "yes")
		require.NoError(t, err)
		assert.True(t, value)
	})

	t.Run("Time", func(t *testing.T) {
		value, err := ParseAs[time.Time](e, "2024-06-01 13:30:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 6, 1, 13, 30, 0, 0, time.UTC), value)
	})

	t.Run("TimeNoLayoutMatches", func(t *testing.T) {
		_, err := ParseAs[time.Time](e, "June 1st")
		assert.ErrorIs(t, err, ErrParseFormat)
	})

	t.Run("Duration", func(t *testing.T) {
		value, err := ParseAs[time.Duration](e, "1h30m")
		require.NoError(t, err)
		assert.Equal(t, 90*time.Minute, value)
	})

	t.Run("IP", func(t *testing.T) {
		value, err := ParseAs[net.IP](e, "192.168.0.1")
		require.NoError(t, err)
		assert.True(t, value.Equal(net.IPv4(192, 168, 0, 1)))
	})

	t.Run("URL", func(t *testing.T) {
		value, err := ParseAs[*url.URL](e, "https://example.com/x?q=1")
		require.NoError(t, err)
		require.NotNil(t, value)
		assert.Equal(t, "example.com", value.Host)
	})

	t.Run("JSONObject", func(t *testing.T) {
		value, err := ParseAs[map[string]any](e, `{"a": 1, "b": "two"}`)
		require.NoError(t, err)
		assert.Equal(t, "two", value["b"])
	})

	t.Run("JSONObjectRejectsPlainText", func(t *testing.T) {
		_, err := ParseAs[map[string]any](e, "not json")
		assert.ErrorIs(t, err, ErrParseFormat)
	})

	t.Run("RawMessage", func(t *testing.T) {
		value, err := ParseAs[json.RawMessage](e, `[1,2,3]`)
		require.NoError(t, err)
		assert.JSONEq(t, `[1,2,3]`, string(value))
	})

	t.Run("Complex", func(t *testing.T) {
		value, err := ParseAs[complex128](e, "1+2i")
		require.NoError(t, err)
		assert.Equal(t, complex(1, 2), value)
	})

	t.Run("TextUnmarshaler", func(t *testing.T) {
		value, err := ParseAs[rgb](e, "10/20/30")
		require.NoError(t, err)
		assert.Equal(t, rgb{10, 20, 30}, value)

		_, err = ParseAs[rgb](e, "10/20")
		assert.ErrorIs(t, err, ErrParseFormat)
	})
}

func TestGenericFallbackDispatch(t *testing.T) {
	e := NewEngine(EngineOpts{})

	t.Run("StringSlice", func(t *testing.T) {
		value, err := ParseAs[[]string](e, "a,b,c")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, value)
	})

	t.Run("EmptyIsAbsent", func(t *testing.T) {
		value, err := e.ParseType("", reflect.TypeOf(0))
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("NonEmptyUnparsableFails", func(t *testing.T) {
		_, err := e.ParseType("abc", reflect.TypeOf(0))
		assert.ErrorIs(t, err, ErrParseFormat)
	})
}

func TestPackageLevelAPI(t *testing.T) {
	// The package-level functions delegate to the shared default engine;
	// local types keep this test isolated from others.
	type shade int

	require.NoError(t, RegisterEnum(map[string]shade{"light": 1, "dark": 2}))

	value, err := Parse[shade]("DARK")
	require.NoError(t, err)
	assert.Equal(t, shade(2), value)

	n, err := Parse[int]("41")
	require.NoError(t, err)
	assert.Equal(t, 41, n)

	n, err = ParseOrDefault("", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	assert.True(t, CanParseAs[int]())
	assert.True(t, CanParse(reflect.TypeOf(shade(0))))
	assert.False(t, CanParseAs[func()]())

	raw, err := ParseType("7", reflect.TypeOf(0))
	require.NoError(t, err)
	assert.Equal(t, 7, raw)

	def, err := ParseTypeOrDefault("", reflect.TypeOf(0), 13)
	require.NoError(t, err)
	assert.Equal(t, 13, def)
}

func TestConcurrentParse(t *testing.T) {
	// Parse calls for overlapping fresh types from many goroutines must
	// not race and must populate one probe per type.
	e := NewEngine(EngineOpts{})

	targets := []reflect.Type{
		reflect.TypeOf(0),
		reflect.TypeOf(int8(0)),
		reflect.TypeOf(int16(0)),
		reflect.TypeOf(uint32(0)),
		reflect.TypeOf(float64(0)),
		reflect.TypeOf(false),
		reflect.TypeOf(""),
	}

	var wg sync.WaitGroup
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, typ := range targets {
				_, err := e.ParseType("1", typ)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, len(targets), e.Probes().Size())
}
