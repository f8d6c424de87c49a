package engine

// Skill unlocks are lookup tables, not formulas. Universal skills arrive
// at fixed levels for every class; each class has its own unlocks at the
// levels in between.

var universalSkills = map[int]string{
	2:  "Quick Learner",
	3:  "Multitasker",
	5:  "Efficient Processor",
	7:  "Team Player",
	10: "Veteran Instincts",
	15: "Domain Authority",
	20: "Singularity Focus",
}

var classSkills = map[Class]map[int]string{
	ClassCoder: {
		4:  "Clean Refactor",
		6:  "Test Whisperer",
		8:  "Systems Thinking",
		12: "Architecture Vision",
		16: "Zero-Bug Aura",
	},
	ClassResearcher: {
		4:  "Source Diver",
		6:  "Pattern Spotter",
		8:  "Deep Synthesis",
		12: "Citation Web",
		16: "Paradigm Shift",
	},
	ClassDesigner: {
		4:  "Pixel Perfect",
		6:  "Color Theory",
		8:  "Flow State",
		12: "Design Language",
		16: "Signature Style",
	},
	ClassStrategist: {
		4:  "Risk Radar",
		6:  "Resource Juggler",
		8:  "Long Game",
		12: "Grand Strategy",
		16: "Checkmate Sense",
	},
	ClassSupport: {
		4:  "First Responder",
		6:  "Calm Under Fire",
		8:  "Triage Master",
		12: "Institutional Memory",
		16: "Guardian Angel",
	},
}

// SkillsForLevel returns the skills a class unlocks at exactly that level.
func SkillsForLevel(c Class, level int) []string {
	var out []string
	if s, ok := universalSkills[level]; ok {
		out = append(out, s)
	}
	if table, ok := classSkills[c]; ok {
		if s, ok := table[level]; ok {
			out = append(out, s)
		}
	}
	return out
}

// SkillsForLevelRange accumulates every unlock for levels in
// (oldLevel, newLevel], so a multi-level jump collects the skills of all
// intermediate levels, not just the landing level.
func SkillsForLevelRange(c Class, oldLevel, newLevel int) []string {
	var out []string
	for l := oldLevel + 1; l <= newLevel; l++ {
		out = append(out, SkillsForLevel(c, l)...)
	}
	return out
}
