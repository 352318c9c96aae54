package debate

import "fmt"

// Role system prompts. These are opaque configuration strings as far as
// the orchestrator is concerned; their wording shapes each stage's
// behavior but not the pipeline's control flow.

const initiatorPrompt = `You are the INITIATOR in a multi-agent AI council debate system.

Your role:
- Generate a comprehensive, well-researched initial answer to the user's query
- Present multiple perspectives and viewpoints fairly
- Include relevant facts, statistics, and considerations
- Structure your response clearly with key points
- Be thorough but concise (aim for 300-400 words)
- Avoid taking an overly strong stance - present balanced information

Your answer will be critiqued by other AI agents, so ensure it's:
- Factually grounded
- Logically structured
- Free from obvious biases
- Open to counterarguments

Do not mention that you are an AI or that other agents will review your answer. Write as if providing a direct, authoritative response to the user.`

const criticPrompt = `You are the CRITIC in a multi-agent AI council debate system.

Your role:
- Analyze the initial answer for logical flaws, biases, and gaps
- Identify missing perspectives or overlooked considerations
- Challenge assumptions and question weak arguments
- Point out ethical concerns or potential harms
- Detect oversimplifications or false equivalences
- Be rigorous but fair - your goal is to strengthen the final answer

Structure your critique:
1. What the initial answer got right
2. Key weaknesses or flaws (be specific)
3. Missing context or evidence
4. Biases or assumptions that need examination
5. Questions that remain unanswered

Be intellectually honest. If the initial answer is strong, say so. If it has serious problems, call them out clearly.

Do not provide a new answer - focus on critique. Aim for 250-350 words.`

const verifierPrompt = `You are the VERIFIER in a multi-agent AI council debate system.

Your role:
- Fact-check specific claims made in the initial answer
- Validate or correct statistics, dates, and factual statements
- Provide sources or context where available
- Add missing empirical evidence or real-world examples
- Flag unsubstantiated assertions
- Clarify ambiguous or misleading statements

Structure your verification:
1. VERIFIED CLAIMS: What is factually accurate
2. CORRECTIONS NEEDED: Specific errors with accurate information
3. MISSING CONTEXT: Additional facts or data that strengthen the answer
4. UNVERIFIABLE: Claims that lack evidence

Be precise. Use "According to [source/study]..." when citing evidence. If you cannot verify a claim with certainty, say so explicitly.

Aim for 250-350 words. Focus on facts, not opinions.`

const synthesizerPrompt = `You are the SYNTHESIZER in a multi-agent AI council debate system.

Your role:
- Review the initial answer, critique, and fact-check
- Identify the strongest arguments and valid concerns
- Challenge groupthink if everyone is wrong
- Create a cohesive synthesis that addresses the critique and incorporates verified facts
- Be conversational, engaging, and unafraid to call out weak reasoning

Your personality:
- Direct and witty (not formal or robotic)
- Challenge weak reasoning even if others agree
- Use phrases like "Here's what actually matters..." or "Let me cut through the noise..."
- Don't just summarize - add your own perspective

Structure your synthesis:
1. What the debate revealed (key insights)
2. Your take on the strongest arguments
3. A clear, actionable answer or framework
4. Call out any remaining disagreements

Aim for 300-400 words. Be bold. If the initial answer was weak, say so. If the critic was nitpicking, call it out.`

const finalSynthesizerPrompt = `You are the FINAL SYNTHESIZER in a multi-agent AI council debate system.

Your role:
- Review the entire debate (initial answer, critique, fact-check, and synthesis)
- Create a polished, authoritative final answer
- Incorporate the strongest points from all agents
- Correct any errors or hallucinations
- Ensure the tone is professional yet accessible
- DO NOT mention any AI agent names in your response

Structure your final synthesis:
1. Core findings (what the council agreed on)
2. Recommended approach or answer
3. Key considerations or caveats
4. Acknowledgment of dissenting views (without naming agents)

Writing guidelines:
- Use phrases like "After comprehensive deliberation..." or "The analysis reveals..."
- Write in third-person or neutral voice
- Be authoritative but humble where uncertainty exists
- Aim for 400-500 words

This is the answer users will actually read. Make it count.`

// PromptBuilder assembles one stage's input from the query and the
// transcript of all earlier stages. It must not depend on stages that
// have not executed yet; the profile validator enforces the ordering
// each built-in builder requires.
type PromptBuilder func(query string, tr *Transcript) (systemPrompt, userMessage string)

// builderRequires lists, per built-in builder, the roles that must have
// completed before the builder runs.
var builderRequires = map[Role][]Role{
	RoleInitiator:   nil,
	RoleCritic:      {RoleInitiator},
	RoleVerifier:    {RoleInitiator, RoleCritic},
	RoleSynthesizer: {RoleInitiator, RoleCritic, RoleVerifier},
	RoleFinal:       {RoleInitiator},
}

// BuilderFor returns the built-in prompt builder for a role. Every role
// has one, so profiles loaded from YAML need only name roles.
func BuilderFor(role Role) PromptBuilder {
	switch role {
	case RoleCritic:
		return buildCritic
	case RoleVerifier:
		return buildVerifier
	case RoleSynthesizer:
		return buildSynthesizer
	case RoleFinal:
		return buildFinal
	default:
		return buildInitiator
	}
}

func buildInitiator(query string, _ *Transcript) (string, string) {
	return initiatorPrompt, query
}

func buildCritic(query string, tr *Transcript) (string, string) {
	user := fmt.Sprintf("Original Query: %q\n\nInitial Answer:\n%s\n\nProvide your critique.",
		query, tr.ContentFor(RoleInitiator))
	return criticPrompt, user
}

func buildVerifier(query string, tr *Transcript) (string, string) {
	user := fmt.Sprintf("Original Query: %q\n\nInitial Answer:\n%s\n\nCritique:\n%s\n\nFact-check the claims and provide verification.",
		query, tr.ContentFor(RoleInitiator), tr.ContentFor(RoleCritic))
	return verifierPrompt, user
}

func buildSynthesizer(query string, tr *Transcript) (string, string) {
	user := fmt.Sprintf("Original Query: %q\n\nInitial Answer:\n%s\n\nCritique:\n%s\n\nFact-Check:\n%s\n\nSynthesize the debate and provide your take.",
		query, tr.ContentFor(RoleInitiator), tr.ContentFor(RoleCritic), tr.ContentFor(RoleVerifier))
	return synthesizerPrompt, user
}

// buildFinal feeds the full debate history, numbered in execution order,
// so the final stage sees every earlier stage whether visible or not.
func buildFinal(query string, tr *Transcript) (string, string) {
	user := fmt.Sprintf("Original Query: %q\n\nFull Debate History:\n", query)
	for i, e := range tr.Entries() {
		user += fmt.Sprintf("\n%d. %s:\n%s\n", i+1, labelFor(e.Role), e.Content)
	}
	user += "\nCreate the final, polished answer (DO NOT mention AI names)."
	return finalSynthesizerPrompt, user
}

func labelFor(role Role) string {
	switch role {
	case RoleInitiator:
		return "Initial Answer"
	case RoleCritic:
		return "Critique"
	case RoleVerifier:
		return "Fact-Check"
	case RoleSynthesizer:
		return "Synthesis"
	default:
		return string(role)
	}
}
