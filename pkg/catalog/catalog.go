// Package catalog holds the built-in authentication automata.
//
// Both automata model the same login process over the same event alphabet:
// auth-dfa commits to a single outcome when credentials are validated, while
// auth-nfa keeps every plausible outcome (weak authentication, error,
// authenticated) alive until later events rule them out.
package catalog

import (
	"github.com/aretw0/authflow/pkg/adapters/memory"
	"github.com/aretw0/authflow/pkg/domain"
	"github.com/aretw0/authflow/pkg/dsl"
)

const (
	DFAName = "auth-dfa"
	NFAName = "auth-nfa"

	// DefaultScenario is the scenario every built-in automaton defines and the CLI plays by default.
	DefaultScenario = "login"
)

// DFA returns a fresh copy of the deterministic authentication automaton.
func DFA() *domain.Definition {
	b := dsl.New(DFAName, domain.Deterministic).
		Describe("Deterministic login flow: every event leads to exactly one state.")

	b.Add("Q0").Label("start").Initial().
		On("accessForm", "Q1")

	b.Add("Q1").Label("showingForm").
		On("submitCredentials", "Q2")

	b.Add("Q2").Label("validating").
		On("validCredentials", "Q4").
		On("invalidCredentials", "Q3")

	b.Add("Q3").Label("error").
		On("retryLogin", "Q1")

	b.Add("Q4").Label("authenticated").
		On("accessResource", "Q5").
		On("logout", "Q0")

	b.Add("Q5").Label("accessGranted").Accepting().
		On("logout", "Q0")

	b.Scenario(DefaultScenario, "accessForm", "submitCredentials", "validCredentials", "accessResource")
	b.Scenario("login-retry", "accessForm", "submitCredentials", "invalidCredentials", "retryLogin")
	b.Scenario("logout", "accessForm", "submitCredentials", "validCredentials", "logout")

	return b.MustBuild()
}

// NFA returns a fresh copy of the non-deterministic authentication automaton.
func NFA() *domain.Definition {
	b := dsl.New(NFAName, domain.Nondeterministic).
		Describe("Non-deterministic login flow: validating credentials may end weak, failed or authenticated.")

	b.Add("Q0").Label("start").Initial().
		On("accessForm", "Q1")

	b.Add("Q1").Label("showingForm").
		On("submitCredentials", "Q2")

	b.Add("Q2").Label("validating").
		On("credentials", "Q3", "Q4", "Q5")

	b.Add("Q3").Label("weakAuth").
		On("secondFactor", "Q5").
		On("timeout", "Q4")

	b.Add("Q4").Label("error").
		On("retryLogin", "Q1")

	b.Add("Q5").Label("authenticated").
		On("accessResource", "Q6").
		On("logout", "Q0")

	b.Add("Q6").Label("accessGranted").Accepting().
		On("logout", "Q0")

	b.Scenario(DefaultScenario, "accessForm", "submitCredentials", "credentials", "secondFactor", "accessResource")
	b.Scenario("login-retry", "accessForm", "submitCredentials", "credentials", "timeout", "retryLogin")
	b.Scenario("direct", "accessForm", "submitCredentials", "credentials", "accessResource")

	return b.MustBuild()
}

// All returns every built-in automaton.
func All() []*domain.Definition {
	return []*domain.Definition{DFA(), NFA()}
}

// Loader exposes the built-in automata through an in-memory loader.
func Loader() *memory.Loader {
	loader, err := memory.NewLoader(All()...)
	if err != nil {
		panic(err)
	}
	return loader
}
