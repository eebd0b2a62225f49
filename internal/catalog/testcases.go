// Package catalog holds the fixed test battery and the default model list.
package catalog

import "github.com/daryltucker/persona-runner/internal/model"

func reply(text, username string) model.TestCase {
	return model.TestCase{Kind: model.KindReply, Text: text, Username: username}
}

func withImage(tc model.TestCase) model.TestCase {
	tc.HasImage = true
	return tc
}

func withLink(tc model.TestCase) model.TestCase {
	tc.HasLink = true
	return tc
}

func withVideo(tc model.TestCase) model.TestCase {
	tc.HasVideo = true
	return tc
}

func post(prompt string) model.TestCase {
	return model.TestCase{Kind: model.KindPost, PromptText: prompt}
}

// battery is never handed out directly; DefaultBattery returns a copy.
var battery = []model.TestCase{
	reply("Hi there! I love your posts about technology. What do you think about the latest AI developments?", "techfan42"),
	reply("That's a stupid take. You clearly don't know what you're talking about.", "hater_account"),
	reply("Can you share your thoughts on your area of expertise?", "curious_mind"),
	reply("I'm working on a project related to your field. Any advice you can share?", "aspiring_dev"),
	reply("What's your favorite thing to talk about?", "casual_follower"),

	withImage(reply("happiness has arrived", "sunny_days")),
	withImage(reply("Flew my parents to visit us in NYC last weekend. Their first time. My parents have never really been able to travel much. Couldn't afford it mostly. I can count on one hand how many times we left the Midwest growing up.", "founder_life")),
	reply("big announcement coming tomorrow this is going to shock the world of planning and management to come", "hype_builder"),
	withLink(reply("Try @Grok voice mode. It's awesome.", "early_adopter")),
	withVideo(reply("🚨🇺🇸 all-in takes DC is back! @host is joined by secretary of agriculture @secretary -- reforming the usda -- massive impact of food stamps on the usda budget -- the trump admin's outsider advantage -- state of farming in 2025: labor, innovation, expanding markets", "podcast_clips")),
	reply("Who can give me the lowdown on Ray Peat", "health_nerd"),
	reply("I've been reading about this before making a public take for about a year and I am thoroughly convinced that 'memetics' is not a fully fleshed, established field of inquiry.", "slow_thinker"),
	withLink(reply("YOU are invited. All the cool kids will be there...", "event_host")),
	withImage(reply("International Jazz Day🎶🎺🎷🎙😍 #GoodEveningWednesdayX😘🍷🥂", "jazz_lover")),
	withVideo(reply("Introducing Clova. Its cursor for video editing, generates full edits from a simple prompt & its live right now @ joinclova.com/edit", "launch_day")),

	reply("Your thread on climate change was enlightening. Have you considered the economic impacts of rapid transitions?", "policy_wonk"),
	reply("I disagree with your take on NFTs. The technology has real potential beyond the current hype cycle.", "web3_builder"),
	reply("Congrats on the funding round! 🎉 What's the first thing you're planning to tackle with the new resources?", "vc_watcher"),
	reply("Your podcast episode with @guest was phenomenal. The discussion on quantum computing applications blew my mind.", "podcast_fan"),
	reply("I'm looking to transition into your industry. Any books or resources you'd recommend for someone starting from scratch?", "career_switcher"),
	reply("Lol this take is wild. You really think web3 is going to revolutionize everything? It's just a rebrand of existing tech.", "skeptic_sam"),
	reply("How do you balance family life with building a company? Struggling with this myself.", "tired_founder"),
	reply("Your recent newsletter on AI safety raised important questions. Are you concerned about the pace of development?", "safety_first"),
	reply("I implemented the strategy you suggested last month and our conversion rate is up 32%! Thanks for sharing your knowledge.", "growth_hacker"),
	reply("What's your take on remote work becoming the norm? Is the office truly dead?", "remote_worker"),

	post("Share an insight about your industry or area of expertise"),
	post("Announce a new project or initiative you're excited about"),
	post("Ask your followers a thought-provoking question"),
	post("Share a quick productivity tip"),
	post("Post a hot take on a current trend in your field"),
	post("Share something you've learned recently"),
	post("Make a prediction about your industry"),
	post("Share a book recommendation relevant to your expertise"),
	post("Reflect on a challenge you've overcome"),
	post("Share a statistic or data point that surprised you"),
	post("Highlight someone in your network who's doing great work"),
	post("Share your thoughts on work-life balance"),
	post("Talk about a tool or resource you find invaluable"),
	post("Celebrate a personal or professional milestone"),
	post("Share an unpopular opinion about something in your field"),
}

// DefaultBattery returns the full ordered battery: 25 replies, then 15 posts.
func DefaultBattery() []model.TestCase {
	return append([]model.TestCase(nil), battery...)
}
