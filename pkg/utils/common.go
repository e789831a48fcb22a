/*
Copyright © 2024 The kubestrap authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package utils

import (
	"context"
	"fmt"
	"net"
	"time"
)

// ExecuteOnExistence executes the function fn if the file existence is the
// one given by the parameter.
func ExecuteOnExistence(file string, existence bool, fn func() error) error {
	exists, err := FS.Exists(file)
	if err != nil {
		return fmt.Errorf("error while checking if %s exists: %w", file, err)
	}

	if exists == existence {
		return fn()
	}
	return nil
}

// ExecuteIfNotExist executes the function fn if the file
// doesn't exist.
func ExecuteIfNotExist(file string, fn func() error) error {
	return ExecuteOnExistence(file, false, fn)
}

// ExecuteIfExist executes the function fn if the file
// exists.
func ExecuteIfExist(file string, fn func() error) error {
	return ExecuteOnExistence(file, true, fn)
}

// GetInterfaceIP returns the first IPv4 address assigned to the named
// network interface.
func GetInterfaceIP(name string) (net.IP, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("error while looking up interface %s: %w", name, err)
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, fmt.Errorf("error while listing addresses of %s: %w", name, err)
	}

	for _, addr := range addrs {
		var ip net.IP
		switch a := addr.(type) {
		case *net.IPNet:
			ip = a.IP
		case *net.IPAddr:
			ip = a.IP
		}
		if ip != nil && ip.To4() != nil {
			return ip, nil
		}
	}
	return nil, fmt.Errorf("no IPv4 address on interface %s", name)
}

// GetOutboundIP returns the preferred outbound ip of this machine.
func GetOutboundIP() (net.IP, error) {
	var d net.Dialer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := d.DialContext(ctx, "udp", "8.8.8.8:80")
	if err != nil {
		return nil, fmt.Errorf("error while getting IP address: %w", err)
	}
	defer func() {
		err = conn.Close()
	}()

	localAddr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return nil, fmt.Errorf("failed to get local address")
	}

	return localAddr.IP, nil
}
