// Package agent implements the four pipeline roles: the gatherer collects
// and scores web sources, the analyzer extracts per-source and overall
// insights, the validator assesses accuracy and bias, and the synthesizer
// assembles the final report.
//
// Every role satisfies the same contract: consume records from one or more
// categories of a query, produce records into exactly one output category,
// and report success or failure. Units of work that need an external
// capability retry a small bounded number of times and then fall back to a
// locally-computed result. A phase degrades rather than aborts, and only
// an empty required input category fails a phase outright.
package agent
