package prompt

// Prompt skeletons. Slots use text/template syntax against the Vars map;
// avoid double opening braces in the JSON examples.

const analysisTemplate = `You are a seasoned log analyst who understands application logs and the
questions engineers ask about them.

Analyze the following natural language question about log data:
"{{.query}}"

Available index fields:
{{.indices_fields_context}}

Identify, as a numbered list:
1. The time range, if one is stated or implied
2. Log levels of interest (ERROR, WARN, INFO, DEBUG)
3. Services, components or hosts mentioned
4. Specific error types, messages or conditions
5. Any aggregations, counts or breakdowns requested

Only refer to fields from the list above. Answer in plain prose; do not write a query yet.`

const translationTemplate = `You are an expert in Elasticsearch and log search. Translate the question into
an Elasticsearch DSL search request.

Question:
"{{.query}}"

Analysis of the question:
{{.analysis}}

Index pattern to search: {{.index_pattern}}

Available index fields:
{{.indices_fields_context}}

Rules:
- Use ONLY the fields listed above. Never invent field names.
- Put exact-value conditions (levels, services, ids) in a bool filter.
- Express time windows as a range filter on the timestamp field using date math (for example "now-1h").
- Use full-text match queries for free text in message fields.
- Add aggregations only when the question asks for counts, breakdowns or trends.

Respond with the JSON search request only. No prose, no markdown.`

const optimizationTemplate = `You are an Elasticsearch performance expert. Review the search request below
for performance and correctness, and return an improved version.

Search request:
{{.es_query}}

Available index fields:
{{.indices_fields_context}}

Apply these rules:
1. Performance: avoid leading wildcards, prefer filter context for exact matches, use keyword
   fields for terms queries and aggregations.
2. Correctness: only use fields listed above; keep the user's intent.
3. If the request contains aggregations, set "size" to 0.
4. If the request has no aggregations, set "size" to 10000.
5. The timestamp field must always be among the returned fields.
6. Never drop a field, filter branch or returned field that the input request has, and never
   narrow the result set compared to the input request.

Return the optimized request in a single fenced block:
` + "```json" + `
<the request>
` + "```" + `
After the block, add one line that starts with "Explanation:" summarizing what you changed.`

const fixTemplate = `You are an Elasticsearch expert. The search request below failed when it was executed.

Search request:
{{.es_query}}

Error returned by Elasticsearch:
{{.error_message}}

Available index fields:
{{.indices_fields_context}}

Correct the request so that it runs without this error while keeping its intent. Only use the
fields listed above.

Respond with the corrected request in a single fenced block and nothing else:
` + "```json" + `
<the request>
` + "```"
