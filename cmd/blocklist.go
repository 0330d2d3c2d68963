package main

import (
	"fmt"

	"github.com/lvdashuaibi/agendavote/internal/eligibility"
	"github.com/lvdashuaibi/agendavote/internal/model"
	"github.com/spf13/cobra"
)

func newBlocklistCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocklist",
		Short: "Manage CPFs that are not able to vote",
	}

	cmd.AddCommand(
		newBlocklistAddCmd(opts),
		newBlocklistRemoveCmd(opts),
		newBlocklistCheckCmd(opts),
	)

	return cmd
}

// withBlocklist 连接Redis黑名单后执行 fn，参数为规范化后的CPF
func withBlocklist(cmd *cobra.Command, opts *rootOptions, raw string, fn func(a *app, cpf string) error) error {
	if !eligibility.ValidCPF(raw) {
		return fmt.Errorf("invalid CPF: %s", raw)
	}
	a, err := loadApp(opts.configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.openBlocklist(cmd.Context()); err != nil {
		return err
	}
	return fn(a, eligibility.NormalizeCPF(raw))
}

func newBlocklistAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <cpf>",
		Short: "Mark a CPF as unable to vote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBlocklist(cmd, opts, args[0], func(a *app, cpf string) error {
				if err := a.blocklist.Block(cmd.Context(), cpf); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s blocked\n", cpf)
				return nil
			})
		},
	}
}

func newBlocklistRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <cpf>",
		Short: "Allow a blocked CPF to vote again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBlocklist(cmd, opts, args[0], func(a *app, cpf string) error {
				if err := a.blocklist.Unblock(cmd.Context(), cpf); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s unblocked\n", cpf)
				return nil
			})
		},
	}
}

func newBlocklistCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <cpf>",
		Short: "Show whether a CPF is able to vote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBlocklist(cmd, opts, args[0], func(a *app, cpf string) error {
				blocked, err := a.blocklist.IsBlocked(cmd.Context(), cpf)
				if err != nil {
					return err
				}
				status := model.AbleToVote
				if blocked {
					status = model.UnableToVote
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cpf, status)
				return nil
			})
		},
	}
}
