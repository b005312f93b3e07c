package cli

import (
	"context"
	"fmt"
)

// ShowConversations prints the locally mirrored conversation list.
func (a *App) ShowConversations(ctx context.Context) error {
	convs := a.chat.Conversations()
	if len(convs) == 0 {
		printlnFn("No conversations.")
		return nil
	}
	for _, c := range convs {
		marker := " "
		if c.UnreadCount > 0 {
			marker = fmt.Sprintf("(%d unread)", c.UnreadCount)
		}
		fmt.Fprintf(a.out, "%s  %s  %s\n", c.ID, c.OtherParty.Name, marker)
	}
	return nil
}

// ShowUnread prints the aggregate unread counter.
func (a *App) ShowUnread(ctx context.Context) error {
	fmt.Fprintf(a.out, "Unread messages: %d\n", a.chat.Unread())
	return nil
}

// MarkRead prompts for a conversation id and marks it read. The local count
// is zeroed immediately; the aggregate counter reconciles right after.
func (a *App) MarkRead(ctx context.Context) error {
	conversationID, err := getSimpleText(a.reader, "Enter conversation id", a.out)
	if err != nil {
		return err
	}
	a.chat.MarkConversationRead(ctx, conversationID)
	return nil
}

// Refresh forces an immediate chat refresh ahead of the poll timer.
func (a *App) Refresh(ctx context.Context) error {
	a.chat.RefreshConversations(ctx)
	a.chat.RefreshUnreadCount(ctx)
	printlnFn("Refreshed.")
	return nil
}
