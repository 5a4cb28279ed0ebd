package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	u := a.sync.CurrentUser()
	if u == nil {
		return "(signed out)"
	}
	return fmt.Sprintf("(%s %s)", u.Email, strings.Join(u.Roles, ","))
}

func (a *App) Root(ctx context.Context) {
	fmt.Println("Strata client (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
