// Package generator creates random slide puzzles.
//
// Generate lays out a walled grid and scatters tiles over the interior by
// cumulative probability, then places the player and the target. The same
// seed always yields the same puzzle. GenerateSolvable repeats generation
// until the solver finds a shortest solution whose length falls within the
// requested step range.
//
// Generation parameters come from named presets. The built-in "easy" and
// "normal" presets can be overridden or extended with a YAML file:
//
//	presets:
//	  - name: hard
//	    width: 14
//	    height: 10
//	    min_steps: 8
//	    max_steps: 16
//	    tiles:
//	      - tile: wall
//	        probability: 0.12
//	      - tile: loose
//	        probability: 0.1
package generator
