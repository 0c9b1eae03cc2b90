package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[SetConsumerMessage] = (*SetConsumerCommand)(nil)
	_ gocmd.Commander[AuthorizeMessage]   = (*AuthorizeCommand)(nil)
)
