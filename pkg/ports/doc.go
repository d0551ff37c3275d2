/*
Package ports defines the driven ports (interfaces) used by civicflow steps.

These interfaces decouple the steps from external implementations, so the same
flow runs against a real database and language model or against in-memory fakes.

# Key Interfaces

  - TextGenerator: Sends a prompt to a language model (e.g., an OpenAI-compatible API).
  - QueryRunner: Executes read-only SQL and returns rows.
  - SchemaInspector: Describes tables so prompts can reference real columns.
  - MapRenderer: Turns rows with coordinates into a map artifact.
  - TranslationCache: Remembers question-to-SQL translations (Memory or Redis).
*/
package ports
