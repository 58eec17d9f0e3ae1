package judge

const evaluationSystemPrompt = "You are an expert evaluator of voice agents. Always respond with valid JSON."

const evaluationPromptTemplate = `You are an expert evaluator of voice agents in debt collection scenarios. Evaluate the bot's performance in the following conversation.

CUSTOMER PERSONA: %s

EXPECTED BEHAVIOR:
%s

SUCCESS CRITERIA:
%s

CONVERSATION TRANSCRIPT:
%s

EVALUATION CRITERIA:
1. Professionalism (0-1): Was the agent professional, respectful, and compliant?
2. Empathy (0-1): Did the agent show appropriate empathy and understanding?
3. Effectiveness (0-1): Was the agent effective in achieving the call objectives?
4. Compliance (0-1): Did the agent follow compliance guidelines and regulations?
5. Risk Management (0-1): Did the agent handle risks appropriately?

Please provide your evaluation in the following JSON format:
{
    "overall_score": 0.85,
    "passed": true,
    "feedback": "The agent performed well overall, showing professionalism and empathy. However, there are areas for improvement.",
    "improvement_suggestions": [
        "Be more specific about payment options",
        "Ask more clarifying questions about the customer's situation"
    ],
    "failure_reasons": [],
    "detailed_scores": {
        "professionalism": 0.9,
        "empathy": 0.8,
        "effectiveness": 0.7,
        "compliance": 0.9,
        "risk_management": 0.8
    }
}

Focus on:
- How well the agent handled the specific customer persona
- Whether the agent met the success criteria
- Areas where the agent excelled or failed
- Specific, actionable improvement suggestions
- Compliance and risk management aspects

Respond with valid JSON only.`

const improvementSystemPrompt = "You are an expert at improving AI agent prompts. You MUST generate complete, properly formatted prompts that maintain the exact same structure as the input. Never truncate your output."

const improvementPromptHeader = `You are an expert at improving AI agent prompts for debt collection scenarios. Based on the performance evaluation results, improve the current prompt.

CRITICAL REQUIREMENTS:
1. You MUST maintain the EXACT SAME STRUCTURE as the current prompt
2. You MUST include ALL the same sections: CUSTOMER CONTEXT, CALL FLOW, CONVERSATION RULES, COMMON SCENARIOS & RESPONSES
3. You MUST preserve all variable placeholders like {customer_name}, {account_last4}, etc.
4. You MUST generate a COMPLETE prompt that can directly replace the current instructions
5. You MUST end the prompt properly - do not truncate mid-sentence

CURRENT PROMPT STRUCTURE:
%s

PERFORMANCE ANALYSIS:
- Average Score: %.2f
- Common Issues: %s
- Improvement Areas: %s

DETAILED EVALUATION RESULTS:
`

const improvementPromptFooter = `

IMPROVEMENT GUIDELINES:
1. Address the common issues identified in the evaluation results
2. Incorporate the improvement suggestions into the appropriate sections
3. Maintain professionalism and compliance throughout
4. Keep the prompt clear and actionable
5. Focus on areas with low scores
6. Preserve what's working well
7. ENSURE the prompt is COMPLETE and properly formatted
8. END the prompt with a proper closing - do not truncate

OUTPUT FORMAT:
Generate a COMPLETE improved prompt that:
- Starts with "You are Tira, a polite and professional AI voice agent..."
- Includes ALL sections: CUSTOMER CONTEXT, CALL FLOW, CONVERSATION RULES, COMMON SCENARIOS & RESPONSES
- Ends properly with the last scenario response
- Is ready to be published as the live agent instructions

Respond with the COMPLETE improved prompt only, no additional commentary or explanations.`
