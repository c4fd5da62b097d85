package mcpserver

// DeltaFormatContract describes the canonical delta-block format that
// agent participants MUST follow when posting edits to a thread.
const DeltaFormatContract = "# Delta Block Format\n" +
	"\n" +
	"Edits to the shared research artifact travel inside ordinary thread\n" +
	"messages as fenced code blocks tagged `delta`. Each block holds one\n" +
	"JSON object:\n" +
	"\n" +
	"```delta\n" +
	"{\n" +
	"  \"operation\": \"ADD | EDIT | DELETE\",\n" +
	"  \"section\": \"research_thread | hypothesis | evidence | experiment | open_question | next_step\",\n" +
	"  \"target_id\": null,\n" +
	"  \"payload\": {\"statement\": \"...\"},\n" +
	"  \"rationale\": \"why this edit\",\n" +
	"  \"anchors\": [\"msg:12\", \"msg:14-16\"]\n" +
	"}\n" +
	"```\n" +
	"\n" +
	"Rules:\n" +
	"- `target_id: null` creates a new entry; a stable id (e.g. `hyp-2`)\n" +
	"  edits or deletes that entry.\n" +
	"- Creates must carry every required field for the section; edits may\n" +
	"  carry any subset (partial update).\n" +
	"- Payload values are scalars. Nested objects are rejected.\n" +
	"- `anchors` cite the source transcript as `msg:<id>` or\n" +
	"  `msg:<id>-<id>`.\n" +
	"- Message subjects follow the thread conventions: `[DELTA][<role>]`,\n" +
	"  `COMPILED: v<N> artifact`, `CRITIQUE`, `ACK <message-id>`,\n" +
	"  `KICKOFF`, `CLAIM`, `HANDOFF`, `BLOCKED`, `QUESTION`, `INFO`.\n" +
	"\n" +
	"Required fields per section:\n" +
	"- research_thread: statement\n" +
	"- hypothesis: statement\n" +
	"- evidence: summary, source\n" +
	"- experiment: description\n" +
	"- open_question: question\n" +
	"- next_step: description\n"
