// Package prompt composes system prompts and user messages for persona
// content generation. Everything here is a pure function of the actor and
// engagement target, so the generation paths stay trivially testable.
package prompt

import (
	"fmt"
	"strings"

	"murmur/internal/models"
)

// ForPost builds the system prompt for authoring a new post as the actor.
func ForPost(actor *models.Actor) string {
	var b strings.Builder
	b.WriteString("You are a user on a social platform, sharing your own thoughts. Keep an authentic, personal voice.\n\n")
	writeIdentity(&b, actor, true)
	writeInterests(&b, actor, true)
	b.WriteString("\nWrite in the first person, in a relaxed and natural tone.")
	return b.String()
}

// ForComment builds the system prompt for commenting on someone else's post.
func ForComment(actor *models.Actor) string {
	var b strings.Builder
	b.WriteString("You are a user on a social platform, commenting on another person's post. Keep an authentic, personal voice and engage in a friendly, constructive way.\n\n")
	writeIdentity(&b, actor, false)
	writeInterests(&b, actor, false)
	b.WriteString("\nReply from your own background and point of view, staying friendly and constructive.")
	return b.String()
}

// PostMessage is the user message instructing the model to author a post.
func PostMessage() string {
	return "Based on your personality and interests, share a thought, an opinion, or an everyday reflection. " +
		"Make it interesting and substantial enough to spark discussion. " +
		"Output the content directly with no preamble. Keep it between 50 and 200 characters."
}

// CommentMessage is the user message instructing the model to comment on a post.
func CommentMessage(post *models.Post) string {
	author := post.Actor.Name
	if author == "" {
		author = "an anonymous user"
	}
	return fmt.Sprintf(
		"Share your take on the following post:\n\n“%s”\n\nPosted by: %s\n\n"+
			"Respond from your own views and experience; you can agree, add to it, discuss it, or politely disagree. "+
			"Output the comment directly with no preamble. Keep it between 20 and 100 characters.",
		post.Content, author,
	)
}

// ReplyMessage is the user message for replying to an existing comment,
// contextualizing both the post and the parent comment.
func ReplyMessage(post *models.Post, parent *models.Comment) string {
	author := post.Actor.Name
	if author == "" {
		author = "an anonymous user"
	}
	parentAuthor := parent.Actor.Name
	if parentAuthor == "" {
		parentAuthor = "another user"
	}
	return fmt.Sprintf(
		"On the following post:\n\n“%s”\n\nPosted by: %s\n\n"+
			"%s commented:\n\n“%s”\n\n"+
			"Write a reply to that comment from your own views and experience; you can agree, add to it, discuss it, or politely disagree. "+
			"Output the reply directly with no preamble. Keep it between 20 and 100 characters.",
		post.Content, author, parentAuthor, parent.Content,
	)
}

func writeIdentity(b *strings.Builder, actor *models.Actor, full bool) {
	if actor.Name != "" {
		fmt.Fprintf(b, "Your name is: %s\n", actor.Name)
	}
	if actor.Bio != "" {
		fmt.Fprintf(b, "Your bio: %s\n", actor.Bio)
	}
	if full && actor.SelfIntroduction != "" {
		fmt.Fprintf(b, "About you: %s\n", actor.SelfIntroduction)
	}
}

func writeInterests(b *strings.Builder, actor *models.Actor, withDescriptions bool) {
	if len(actor.Interests) == 0 {
		return
	}
	if withDescriptions {
		b.WriteString("\nYour interests and traits:\n")
		for _, it := range actor.Interests {
			if it.Name == "" {
				continue
			}
			b.WriteString("- " + it.Name)
			if it.Description != "" {
				b.WriteString(": " + it.Description)
			}
			b.WriteString("\n")
		}
		return
	}

	names := make([]string, 0, len(actor.Interests))
	for _, it := range actor.Interests {
		if it.Name != "" {
			names = append(names, it.Name)
		}
	}
	if len(names) > 0 {
		fmt.Fprintf(b, "Your interests: %s\n", strings.Join(names, ", "))
	}
}
