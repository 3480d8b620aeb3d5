/*
Package domain contains the core domain models of the authflow automata engine.

It defines the fundamental entities of a finite automaton simulation: the
alphabet of Symbols, the States, the declarative transition relation
(Definition) and its compiled lookup form (Table), the instantaneous
Configuration of a running automaton and the serializable Run snapshot.
This package is kept pure and free of I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - Definition: the static, declarative automaton (alphabet, states, rules, initial and accepting states).
  - Table: the validated lookup built from a Definition. Undefined (state, symbol) pairs
    self-loop in deterministic mode and yield no targets in non-deterministic mode.
  - Configuration: the set of states an automaton currently occupies. Exactly one for a DFA,
    any subset (possibly empty) for an NFA.
  - Run: a snapshot of a simulation (sequence, cursor, configuration, status, trajectory).
*/
package domain
