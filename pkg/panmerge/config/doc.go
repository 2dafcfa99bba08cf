/*
Package config holds the runtime knobs of a merge run and loads them
from YAML or JSON files.

# Precedence

Values resolve in three layers, each overriding the one before:

 1. Default() supplies the built-in values.
 2. FromFile overlays a config file; absent keys keep their defaults.
 3. The CLI overlays the command-line flags the user actually set.

# File Loading

The format is picked by file extension (.yaml, .yml or .json):

	cfg, err := config.FromFile("merge.yaml")
	if err != nil {
	    log.Fatal(err)
	}

A typical file:

	genome_list: genomes.txt
	output: pangenome.fasta.gz
	map_dir: maps
	haplotype: "2"
	threads: 8
	journal: runs.db
*/
package config
