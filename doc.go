/*
Package authflow simulates authentication flows as finite automata.

An automaton is either deterministic (DFA: one current state, undefined
transitions self-loop) or non-deterministic (NFA: a set of current states,
undefined transitions contribute nothing, an empty set means no valid
continuation). A run replays a fixed input sequence against an automaton one
symbol per tick, recording every configuration it visits.

# Concept

Definitions come from a DefinitionLoader (a Loam repository of Markdown
documents by default, YAML files, or the built-in catalog). The Engine compiles
them into immutable transition tables. Runs are driven in memory with Simulate,
or persisted with StartRun/TickRun so that HTTP handlers, MCP tools and CLI
sessions can advance them one tick at a time.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/authflow"
		"github.com/aretw0/authflow/pkg/catalog"
	)

	func main() {
		// Serve the built-in auth-dfa and auth-nfa automata.
		eng, err := authflow.New("")
		if err != nil {
			log.Fatal(err)
		}

		run, err := eng.Simulate(context.Background(), authflow.RunRequest{
			Automaton: catalog.NFAName,
			Scenario:  catalog.DefaultScenario,
		})
		if err != nil {
			log.Fatal(err)
		}

		for _, c := range run.Trajectory {
			fmt.Println(c) // {Q0} {Q1} {Q2} {Q3,Q4,Q5} {Q5} {Q6}
		}
	}
*/
package authflow
