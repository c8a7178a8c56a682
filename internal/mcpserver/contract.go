package mcpserver

// EntityFormatContract describes the canonical entity document format that
// LLM consumers should follow when authoring catalog content.
const EntityFormatContract = `# Ansuz Entity Format Contract

Every Markdown document in an Ansuz source MUST follow this structure.

## Structure

` + "```" + `markdown
---
id: unique-entity-id                # REQUIRED - globally unique across all sources
type: data                          # REQUIRED - profile | skill | tool | data
title: Human-readable title         # OPTIONAL - display name in listings
tags:                               # OPTIONAL - lowercase matching terms (+10 each)
  - meeting
  - project-x
triggers:                           # OPTIONAL - intent phrases (+15 each)
  - summarize the meeting
status: reviewed                    # OPTIONAL - draft | candidate | reviewed | stable
quality: high                       # OPTIONAL - low | medium | high | best
doc_type: transcript                # data only - transcript | journal | article | collateral | table
date: 2026-02-05                    # data only - ISO date; derived from a
                                    # leading YYYY-MM-DD filename token if absent
summary_3: Three-sentence summary.  # OPTIONAL - preferred over generated excerpts
summary_1: One-line summary.        # OPTIONAL - fallback before generated excerpts
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **Directory determines type.** Documents live under their type's
   subdirectory: ` + "`" + `profiles/` + "`" + `, ` + "`" + `skills/` + "`" + `, ` + "`" + `tools/` + "`" + `, or ` + "`" + `data/` + "`" + `.
   A frontmatter type that disagrees with its directory is skipped.
2. **Ids are global.** A duplicate id anywhere across sources aborts the
   entire catalog load.
3. **Tags and triggers** are lowercase; they match as substrings of the
   lowercased request.
4. **Dates** use ISO format (` + "`" + `YYYY-MM-DD` + "`" + `). Data files named
   ` + "`" + `2026-02-05_notes.md` + "`" + ` inherit that date when frontmatter has none.
5. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes.
6. **Encoding** is UTF-8 with a trailing newline.

## Reference addressing

- Index text embeds references as ` + "`" + `ref:<source>:<type>:<id>` + "`" + `.
- Resources resolve as ` + "`" + `ansuz://<source>/<type>/<id>` + "`" + ` for entities and
  ` + "`" + `ansuz://outputs/map/<filename>` + "`" + ` for generated map files.
`
