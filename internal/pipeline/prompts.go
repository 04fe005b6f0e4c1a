package pipeline

import (
	"fmt"
	"strings"
)

// System instructions, one per model-backed step.
const (
	understandingInstructions = "You analyze source content for a social media team and extract structured metadata. " +
		"Reply with JSON only."

	adapterInstructions = "You are an expert social media manager. Write the post body only. " +
		"Do not include hashtags yet, except as placeholders where the task asks for them."

	hashtagInstructions = "You research hashtags. Generate optimized hashtags for each requested platform, " +
		"grounded on the search results when they are relevant. Reply with a JSON object whose keys are " +
		"lowercase platform names and whose values are lists of hashtag strings."

	visualsInstructions = "You are a creative director. Produce a single descriptive Google Images search query " +
		"that finds high-quality, aesthetic images suitable for social media posts. " +
		"Return only the query string, without quotes or explanations."

	optimizerInstructions = "You are a final content polisher. Return only the final ready-to-post text, " +
		"with no commentary before or after it."

	schedulerInstructions = "You advise on posting schedules using general best practices and audience fit. " +
		"Reply with a JSON object whose keys are platform names and whose values describe the best time " +
		"to post, for example \"Tuesday 10 AM\"."
)

// platformTasks is the fixed writing brief of each adapter.
var platformTasks = map[Platform]string{
	Twitter:   "Rewrite in <280 chars. Add a hook. Add a CTA (optional). Include 1-3 placeholders for hashtags.",
	Instagram: "Focus on emotional storytelling. Write an engaging caption. Use line-break formatting. Add placeholders for 20 hashtags.",
	LinkedIn:  "Use a professional tone. Focus on value delivery. Use bullet points. Add a CTA at the end.",
	YouTube:   "Generate a Video Title, SEO Description, and a comma-separated Tag List.",
	Blog:      "Write a 300-600 word blog post. SEO-optimized. Include subheadings and a summary paragraph.",
}

func understandingPrompt(content, tone string) string {
	return fmt.Sprintf(`Analyze the following content and extract structured metadata.

Content: %s
Desired Tone: %s

Return a JSON object with these keys:
- intent: the goal of the post
- audience: the target audience
- keywords: list of the top 5 keywords
- topic: the main topic
- tone: the detected or requested tone
- summary: a brief summary of the content`, content, tone)
}

func adapterPrompt(platform Platform, content string, metadata Metadata) string {
	return fmt.Sprintf(`Platform: %s
Task: %s

Base Content: %s

Topic: %s
Audience: %s
Keywords: %s
Tone: %s

Generate the content for %s.`,
		platform, platformTasks[platform], content,
		metadata.Topic, metadata.Audience, strings.Join(metadata.Keywords, ", "), metadata.Tone,
		platform)
}

func hashtagSearchQuery(topic string, keywords []string) string {
	return strings.TrimSpace(fmt.Sprintf("trending hashtags for %s %s", topic, strings.Join(keywords, " ")))
}

func hashtagPrompt(topic string, keywords []string, searchContext string, platforms []Platform) string {
	if searchContext == "" {
		searchContext = "No search results available."
	}
	return fmt.Sprintf(`Topic: %s
Keywords: %s
Target Platforms: %s

Search Results:
%s

Example reply:
{"twitter": ["#tag1", "#tag2"], "instagram": ["#tag1", "#tag2"]}`,
		topic, strings.Join(keywords, ", "), strings.Join(platformNames(platforms), ", "), searchContext)
}

func visualsPrompt(topic string, keywords []string) string {
	return fmt.Sprintf("Topic: %s\nKeywords: %s", topic, strings.Join(keywords, ", "))
}

func optimizerPrompt(platform Platform, draft, tags, tone string) string {
	return fmt.Sprintf(`Platform: %s
Draft Content: %s
Hashtags to Integrate: %s
Brand Tone: %s

Task:
1. Polish the draft for clarity and engagement.
2. Make the tone match the brand.
3. Integrate the hashtags naturally, or append them at the end if that is the platform norm.
4. Return ONLY the final ready-to-post text.`, platform, draft, tags, tone)
}

func schedulerPrompt(platforms []Platform, audience, topic string) string {
	return fmt.Sprintf(`Suggest the best posting time for each of these platforms.

Platforms: %s
Audience: %s
Topic: %s`, strings.Join(platformNames(platforms), ", "), audience, topic)
}
