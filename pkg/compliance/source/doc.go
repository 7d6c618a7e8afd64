// Package source loads compliance rule packs.
//
// A rule pack is a YAML document:
//
//	name: uk-commercial
//	version: "2025.1"
//	description: UK commercial contract checks
//	rules:
//	  - id: rule-1
//	    name: Limitation of Liability Reasonableness
//	    regulation: Unfair Contract Terms Act 1977
//	    category: legal
//	    severity: High
//	    pattern: '\b(any|all)\s+(liability|damages)\b'
//	    guidance: Limitations of liability must be reasonable.
//
// Omitting active means the rule is active. Unknown keys are rejected.
//
// FileSource reads a pack file or a directory of packs, GitSource reads
// packs from a committed revision of a local repository, and MemorySource
// serves rules held in process.
package source
