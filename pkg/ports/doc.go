/*
Package ports defines the driven ports (interfaces) for the authflow engine.

These interfaces decouple the automaton core from external implementations, allowing
definitions to come from different sources and runs to be persisted in different backends.

# Key Interfaces

  - DefinitionLoader: Responsible for loading automaton Definitions (e.g., from Loam, YAML files or Memory).
  - RunStore: Responsible for persisting and loading Run snapshots.
  - DistributedLocker: Provides distributed locking for handling concurrent access to a run.
*/
package ports
