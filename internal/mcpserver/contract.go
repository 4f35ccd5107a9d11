package mcpserver

// NoteFormat describes the donno note file layout and the search pattern
// syntax for MCP clients.
const NoteFormat = `# donno note format

Each note is a UTF-8 text file directly inside the note directory, named
after its creation time (` + "`20220110-180211.md`" + `).

## Layout

` + "```" + `
Title: Powershell Profile
Tags: ps1; shell
Notebook: /Tech/Public
Created: 2021-06-01 09:30:00
Updated: 2022-01-10 18:02:11

------

Body text, kept verbatim.
` + "```" + `

1. Five header lines in this order: Title, Tags, Notebook, Created, Updated.
2. Tags are joined by "; ". No tag may contain "; " or a line break.
3. Timestamps are local wall-clock time, ` + "`YYYY-MM-DD HH:MM:SS`" + `, no zone.
4. A blank line, the separator ` + "`------`" + `, and one more blank line
   precede the body.

## Search patterns

A pattern is ` + "`[prefix:]pattern[:flags]`" + `. A note matches a search when
it matches every pattern.

| prefix | field | flags |
|--------|-------|-------|
| (none) | title, tags, notebook, timestamps and body | none |
| ` + "`ti`" + ` | title | ` + "`i`/`I`" + ` ignore/respect case, ` + "`w`/`W`" + ` whole word/partial |
| ` + "`ta`" + ` | tags | same as ti |
| ` + "`nb`" + ` | notebook | same as ti |
| ` + "`cr`" + ` | created | ` + "`B`" + ` on or after (default), ` + "`b`" + ` before |
| ` + "`up`" + ` | updated | same as cr |

Text patterns ignore case and match partial words by default. Timestamps
may be truncated: ` + "`2021`, `2021-06`, `2021-06-01`, `2021-06-01 09`, `2021-06-01 09:30`" + `.

Examples: ` + "`powershell`" + `, ` + "`ti:powershell ta:ps1:w`" + `, ` + "`cr:2021:B`" + `,
` + "`powershell up:2022-01-12:b`" + `.
`
