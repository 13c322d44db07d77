// ABOUTME: CLI commands for account registration and login.
// ABOUTME: The login token is kept in the XDG config directory between runs.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/vitals/internal/auth"
	"github.com/harperreed/vitals/internal/tracker"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	registerName     string
	registerEmail    string
	registerPassword string
	registerAge      int
	registerSex      string
	registerPhone    string

	loginPassword string
)

var userCmd = &cobra.Command{
	Use:     "user",
	Aliases: []string{"u"},
	Short:   "Manage your account",
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Create a regular user account. Name and email must be unique.
The password is prompted for when --password is not given.

EXAMPLES:

  vitals user register --name ana --email ana@example.com
  vitals user register --name luis --email luis@example.com --age 41 --sex M`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := registerPassword
		if password == "" {
			var err error
			password, err = readPassword("Contraseña: ")
			if err != nil {
				return err
			}
		}

		reg := tracker.Registration{
			Name:     registerName,
			Email:    registerEmail,
			Password: password,
		}
		if cmd.Flags().Changed("age") {
			age := registerAge
			reg.Age = &age
		}
		if registerSex != "" {
			sex := registerSex
			reg.Sex = &sex
		}
		if registerPhone != "" {
			phone := registerPhone
			reg.Phone = &phone
		}

		u, err := svc.Register(cmd.Context(), reg)
		if err != nil {
			return err
		}

		color.Green("✓ Registered %s", u.Name)
		fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint(shortID(u.ID.String())), u.Email)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <name>",
	Short: "Log in and remember the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			var err error
			password, err = readPassword("Contraseña: ")
			if err != nil {
				return err
			}
		}

		sess, err := svc.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		if err := auth.SaveSession(auth.SessionPath(), sess); err != nil {
			return err
		}

		color.Green("✓ Logged in as %s (%s)", sess.Name, sess.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := auth.ClearSession(auth.SessionPath()); err != nil {
			return err
		}
		color.Yellow("✓ Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}
		u, err := svc.CurrentUser(cmd.Context(), sess)
		if err != nil {
			return err
		}

		faint := color.New(color.Faint)
		fmt.Printf("%s %s\n", color.New(color.Bold).Sprint(u.Name), faint.Sprint(shortID(u.ID.String())))
		fmt.Printf("  email: %s\n", u.Email)
		fmt.Printf("  rol:   %s\n", u.Role)
		if u.Age != nil {
			fmt.Printf("  edad:  %d\n", *u.Age)
		}
		if u.Sex != nil {
			fmt.Printf("  sexo:  %s\n", *u.Sex)
		}
		if u.Phone != nil {
			fmt.Printf("  tel.:  %s\n", *u.Phone)
		}
		if sess.Role != u.Role {
			fmt.Println(faint.Sprint("  (log in again to use your new role)"))
		}
		return nil
	},
}

// readPassword prompts on a terminal without echo, or reads one line
// from piped stdin.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	registerCmd.Flags().StringVar(&registerName, "name", "", "user name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "email address")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "password (prompted when omitted)")
	registerCmd.Flags().IntVar(&registerAge, "age", 0, "age in years")
	registerCmd.Flags().StringVar(&registerSex, "sex", "", "sex")
	registerCmd.Flags().StringVar(&registerPhone, "phone", "", "phone number")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("email")

	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password (prompted when omitted)")

	userCmd.AddCommand(registerCmd)
	userCmd.AddCommand(loginCmd)
	userCmd.AddCommand(logoutCmd)
	userCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(userCmd)
}
