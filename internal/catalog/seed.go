package catalog

// defaultLevels is the built-in set of leadership levels, from first-line
// team lead to chief executive.
var defaultLevels = []Level{
	{
		ID:      1,
		Title:   "Level 1",
		Summary: "Team lead: is the argument practical for a small team?",
		PromptTemplate: `You are an experienced team lead reviewing a proposal from a colleague.
Judge whether the argument below is practical for a team of five to ten people.
Point out one strength and one weakness, then give a score from 1 to 10.

Argument: `,
	},
	{
		ID:      2,
		Title:   "Level 2",
		Summary: "Department head: does it hold up against budgets and trade-offs?",
		PromptTemplate: `You are a department head responsible for a budget and several teams.
Challenge the argument below on cost, resourcing and trade-offs with other priorities.
List the two most important questions the author must answer, then give a score from 1 to 10.

Argument: `,
	},
	{
		ID:      3,
		Title:   "Level 3",
		Summary: "Executive: does it survive scrutiny on strategy and risk?",
		PromptTemplate: `You are a senior executive on the leadership team.
Evaluate the argument below for strategic fit, organisational risk and second-order effects.
Be direct. Name the biggest risk, suggest one mitigation, then give a score from 1 to 10.

Argument: `,
	},
	{
		ID:      4,
		Title:   "Level 4",
		Summary: "CEO: would you stake the company's direction on it?",
		PromptTemplate: `You are the CEO. You have little time and high standards.
Decide whether the argument below deserves company-wide commitment, considering
long-term impact on customers, employees and shareholders.
Answer with a verdict (commit, revise, or reject), your reasoning in three sentences,
and a score from 1 to 10.

Argument: `,
	},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultLevels...)
	if err != nil {
		panic("catalog: invalid built-in levels: " + err.Error())
	}
	return c
}
