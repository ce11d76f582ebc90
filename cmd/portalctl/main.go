package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type client struct {
	BaseURL     string
	AccessToken string
	OutFormat   string // "json" | "text"
	HTTP        *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	// El área admin es cookie-gated: el token viaja como cookie de sesión.
	req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: c.AccessToken})
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func main() {
	_ = godotenv.Load()

	var (
		baseURL = envOr("PORTAL_URL", "http://localhost:8080")
		token   = envOr("PORTAL_ACCESS_TOKEN", "")
		out     = envOr("PORTAL_OUT", "text")
		timeout = 30 * time.Second
	)

	cl := &client{HTTP: &http.Client{
		Timeout: timeout,
		// Sin follow de redirects: un 303 al login significa token inválido
		// y queremos verlo, no perseguirlo.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}

	root := &cobra.Command{
		Use:   "portalctl",
		Short: "CLI admin del portal (rutas /admin)",
		// Los flags recién están parseados acá; el cliente se arma con los
		// valores finales, no con los defaults de entorno.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return fmt.Errorf("falta access token (flag --access-token o env PORTAL_ACCESS_TOKEN)")
			}
			cl.BaseURL = baseURL
			cl.AccessToken = token
			cl.OutFormat = out
			return nil
		},
	}

	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del portal (env PORTAL_URL)")
	root.PersistentFlags().StringVar(&token, "access-token", token, "Access token de un admin (env PORTAL_ACCESS_TOKEN)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Operaciones administrativas (vía /admin)",
	}

	// ping: GET /admin/users con limit=1
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Verifica acceso admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/admin/users?limit=1", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("ping falló: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, []byte(`{"ok":true}`))
			return nil
		},
	}

	// users list
	var listLimit, listOffset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Listar usuarios con su rol",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/admin/users?limit=%d&offset=%d", listLimit, listOffset)
			status, body, err := cl.do("GET", path, nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("list falló: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "Cantidad máxima de usuarios")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Offset de paginación")

	// users set-role
	var setID, setRole string
	setRoleCmd := &cobra.Command{
		Use:   "set-role",
		Short: "Asignar rol a un usuario (admin|user)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if setID == "" {
				return fmt.Errorf("--id es requerido")
			}
			if setRole == "" {
				return fmt.Errorf("--role es requerido (admin|user)")
			}
			b, _ := json.Marshal(map[string]string{"role": setRole})
			status, body, err := cl.do("PUT", "/admin/users/"+setID+"/role", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("set-role falló: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	setRoleCmd.Flags().StringVar(&setID, "id", "", "ID del usuario (uuid del proveedor)")
	setRoleCmd.Flags().StringVar(&setRole, "role", "", "Rol a asignar: admin|user")

	// wiring
	usersCmd := &cobra.Command{Use: "users", Short: "Operaciones sobre usuarios"}
	usersCmd.AddCommand(listCmd)
	usersCmd.AddCommand(setRoleCmd)

	adminCmd.AddCommand(pingCmd)
	adminCmd.AddCommand(usersCmd)
	root.AddCommand(adminCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
