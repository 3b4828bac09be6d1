// Package compiler turns circuit descriptions into declarations and runs
// static checks over built circuits.
//
// Two description formats are supported: the line format parsed by
// package circuit, and CUE documents with a top-level circuit struct:
//
//	circuit: {
//		broadcaster: {kind: "broadcaster", outputs: ["a"]}
//		a:           {kind: "flipflop", outputs: ["inv"]}
//		inv:         {kind: "conjunction", outputs: ["a", "rx"]}
//	}
//
// Static analysis is structural only. AnalyzeLoops reports the feedback
// loops (strongly connected components) of the module graph; Diagnose
// reports modules that can never fire or never receive a pulse.
package compiler
