package handlers

import (
	"fmt"
	"io"
)

// printSummary lists the cluster's endpoints.
func printSummary(w io.Writer, masters, agents []string, sshUser string) {
	p := painter(isTerminal(w))

	_, _ = fmt.Fprintln(w, p.render(titleStyle, "DC/OS is available at the following master endpoints:"))
	for _, m := range masters {
		_, _ = fmt.Fprintf(w, "\t%s\t%s\n",
			p.render(linkStyle, fmt.Sprintf("https://%s/", m)),
			p.render(dimStyle, fmt.Sprintf("ssh://%s@%s", sshUser, m)))
	}

	_, _ = fmt.Fprintln(w, p.render(titleStyle, "The following agents have been installed:"))
	for _, a := range agents {
		_, _ = fmt.Fprintf(w, "\t%s\n", p.render(readyStyle, fmt.Sprintf("ssh://%s@%s", sshUser, a)))
	}

	_, _ = fmt.Fprintln(w, p.render(warningStyle, "WARNING - All host firewalls are OPEN! Service ports are publicly available!"))
}
