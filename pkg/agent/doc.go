/*
Package agent assembles the civicflow pipelines.

Two flows are built from the same collaborators:

  - qa: fetch_schema -> generate_query -> run_query -> plot_map -> generate_answer -> summary
  - agent: translate_nl -> query_database -> format_results

Ask drives the first, Query the second.
*/
package agent
