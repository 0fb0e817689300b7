/*
Copyright © 2024 the cftraj authors.
This file is part of cftraj.

cftraj is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

cftraj is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with cftraj.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command cftraj is a command-line tool for reading, converting, and
// analyzing CF-convention trajectory files.
package main

import (
	"fmt"
	"os"

	"github.com/seatrack/cftraj/cftrajutil"
)

func main() {
	if err := cftrajutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
