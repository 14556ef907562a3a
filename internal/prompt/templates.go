package prompt

// Templates used by the episode generation pipeline. All of them are
// rendered with Render and plain string variables.

// JudgeTemplate asks whether raw content needs elaboration before it can
// drive an episode. The model must answer with a single word.
const JudgeTemplate = `Decide whether the following content needs question answering or additional context before it can be used as source material for a podcast episode. Answer "yes" if any of these apply, otherwise answer "no":
1. It contains explicit questions (interrogative sentences, trailing question marks).
2. It asks for a topic to be discussed or explained.
3. It is incomplete and needs more background to be understood.
4. It refers to things that need up to date information (recent events, current status of people or projects).

Content:
{{content}}

Your answer (only "yes" or "no"):`

// ElaborateTemplate turns a short question or topic into discussion material.
const ElaborateTemplate = `Answer the questions or expand on the topics in the content below. Write a thorough, factual response that could serve as source material for a podcast discussion. Keep the original intent, add the background a listener would need, and do not invent citations.

Content:
{{content}}

Your response:`

// SummaryTemplate condenses oversized content around the episode briefing.
const SummaryTemplate = `Summarize the content below, keeping the information most relevant to this podcast briefing.

Briefing:
{{briefing}}

Content:
{{content}}

Produce a concise summary of at most 2000 words. Preserve the core arguments and key facts, and stay tightly focused on the themes described in the briefing.`

// OutlineTemplate asks for an episode outline as strict JSON.
const OutlineTemplate = `You are planning a podcast episode in {{language}}, hosted by {{speakers}}. Based on the briefing and source content below, produce an outline of exactly {{num_segments}} segments.

Briefing:
{{briefing}}

Source content:
{{content}}

Each segment needs a "name" (a short descriptive title) and a "size": one of "short", "medium" or "long". Use "short" for quick intros or transitions, "medium" for standard discussion, "long" for deep dives into the main topics.

Respond with JSON only, no prose and no markdown fences, in exactly this shape:
{"segments": [{"name": "...", "size": "short|medium|long"}]}`

// TranscriptTemplate asks for one segment's dialogue as strict JSON.
// {{speaker_notes}} carries the speaker roster, {{position}} carries the
// opening/closing guidance, and {{tag_notes}} carries optional voice tag
// instructions for backends that support them.
const TranscriptTemplate = `You are writing the dialogue for one segment of a podcast episode.

Briefing:
{{briefing}}

Source content:
{{content}}

Full episode outline:
{{outline}}

Current segment: "{{segment_name}}" ({{segment_size}})
Write roughly {{turns}} dialogue turns for this segment.

Speakers:
{{speaker_notes}}

{{position}}

Conversation so far:
{{context}}

Rules:
- "speaker" must be one of the speaker names listed above, spelled exactly.
- "emotion" must be one of: {{emotions}}. Pick the emotion that fits each line.
- "speed" must be one of: {{speeds}}.
- Keep the dialogue natural: reactions, short interjections and handoffs between speakers.
{{tag_notes}}
Respond with JSON only, no prose and no markdown fences, in exactly this shape:
{"transcript": [{"speaker": "...", "dialogue": "...", "emotion": "...", "speed": "..."}]}`

// Position guidance injected into TranscriptTemplate.
const (
	PositionFirst  = `This is the FIRST segment. Open the episode: greet the listeners, introduce the speakers and the topic. Do not wrap up.`
	PositionMiddle = `This is a MIDDLE segment. Continue the conversation from the context above. Do not greet the listeners and do not wrap up.`
	PositionLast   = `This is the LAST segment. Bring the conversation to a close and say goodbye to the listeners.`
	PositionOnly   = `This is the ONLY segment. Open the episode with a greeting, cover the topic, and close with a goodbye.`
)
