package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/example/bookstore/internal/service"
)

func newPromoteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "promote <username>",
		Short: "把已有用户提升为管理员",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := e.svcs.Users.Promote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s (id %d) is now %s\n", u.Username, u.ID, u.Role)
			return nil
		},
	}
}

func newCreateAdminCmd(e *env) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "create-admin <username>",
		Short: "创建管理员账号，密码从终端读取",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			ctx := cmd.Context()
			if _, err := e.svcs.Users.Register(ctx, service.RegisterRequest{
				Username: args[0],
				Email:    email,
				Password: password,
			}); err != nil {
				return err
			}
			u, err := e.svcs.Users.Promote(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (id %d)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "管理员邮箱")
	return cmd
}

// readPassword 终端下不回显；管道输入时读取一行
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
