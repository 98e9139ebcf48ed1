package skilltree

// seedSkill is a compact description of a default subtree.
type seedSkill struct {
	label    string
	children []seedSkill
}

// defaultSkills is the starter tree used when no file exists yet.
var defaultSkills = []seedSkill{
	{label: "Arithmetic & Pre-Algebra", children: []seedSkill{
		{label: "Basic Arithmetic", children: []seedSkill{
			{label: "Counting"},
		}},
	}},
	{label: "Algebra", children: []seedSkill{
		{label: "Elementary Algebra", children: []seedSkill{
			{label: "Linear Equations"},
		}},
	}},
}

// Default returns a new tree holding the starter skills.
func Default() *Tree {
	t := New()
	var add func(parent ID, skills []seedSkill)
	add = func(parent ID, skills []seedSkill) {
		for _, s := range skills {
			id, err := t.Insert(parent, s.label)
			if err != nil {
				panic("skilltree: invalid default skill: " + err.Error())
			}
			add(id, s.children)
		}
	}
	add(RootID, defaultSkills)
	return t
}
