// Package rules loads container rules from YAML.
//
// A rule file maps type names to rules. Keys are the snake_case field names
// of container.Rule; unknown keys are an error.
//
//	"*":                       # quoted: a bare * is a YAML alias
//	  shared: false
//
//	Logger:
//	  shared: true
//
//	Mailer:
//	  construct_params:
//	    host: !env MAIL_HOST
//	  substitutions:
//	    Transport: SMTPTransport
//	  new_instances: [Buffer]
//	  call:
//	    - method: SetLogger
//	      args: [!ref Logger]
//
// The tags !ref, !env and !self become container.Ref, container.Env and
// container.Self and are evaluated at resolution time. The wildcard entry is
// applied first wherever it appears in the file.
//
//	if err := rules.LoadInto(c, "rules.yaml"); err != nil {
//	    return err
//	}
package rules
